package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbmaster/internal/dto"
	"verbmaster/internal/progress"
	"verbmaster/internal/service"
)

type mockProgressService struct {
	recordAttemptFunc     func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error)
	getProgressFunc       func(userID string) (*dto.UserProgressDTO, error)
	getStatsFunc          func(userID string) ([]dto.VerbProgressDTO, error)
	getDifficultVerbsFunc func(userID string, limit int) ([]progress.RankedVerb, error)
}

func (m *mockProgressService) RecordAttempt(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
	return m.recordAttemptFunc(userID, rec)
}
func (m *mockProgressService) GetProgress(userID string) (*dto.UserProgressDTO, error) {
	return m.getProgressFunc(userID)
}
func (m *mockProgressService) GetStats(userID string) ([]dto.VerbProgressDTO, error) {
	return m.getStatsFunc(userID)
}
func (m *mockProgressService) GetDifficultVerbs(userID string, limit int) ([]progress.RankedVerb, error) {
	return m.getDifficultVerbsFunc(userID, limit)
}
func (m *mockProgressService) RolloverDailyStats(now time.Time) error { return nil }

type mockAuthService struct {
	parseTokenFunc func(token string) (string, error)
}

func (m *mockAuthService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (m *mockAuthService) Login(req dto.LoginRequest) (string, *dto.AuthResponse, error) {
	return "", nil, nil
}
func (m *mockAuthService) ParseToken(token string) (string, error) { return m.parseTokenFunc(token) }

func newProgressRouter(ps service.ProgressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &mockAuthService{
		parseTokenFunc: func(token string) (string, error) {
			if token != "valid-token" {
				return "", errors.New("bad token")
			}
			return "user-1", nil
		},
	}
	ctrl := NewProgressController(ps)
	r := gin.New()
	authed := r.Group("/api/v1", AuthRequired(auth))
	authed.POST("/progress", ctrl.RecordAttempt)
	authed.GET("/progress", ctrl.GetProgress)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordAttemptHappyPath(t *testing.T) {
	var gotUser string
	var gotRec progress.AttemptRecord
	ps := &mockProgressService{
		recordAttemptFunc: func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
			gotUser, gotRec = userID, rec
			return &dto.RecordAttemptResponse{
				UserProgress: &dto.UserProgressDTO{TotalAttempts: 1, CorrectAttempts: 1},
				VerbProgress: &dto.VerbProgressDTO{Verb: "go", Attempts: 1, Correct: 1},
			}, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodPost, "/api/v1/progress", `{"verb":"go","isCorrect":true,"attemptId":"a1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "go", gotRec.Verb)
	assert.True(t, gotRec.Correct)
	assert.Equal(t, "a1", gotRec.ID)

	var resp dto.RecordAttemptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.UserProgress.TotalAttempts)
}

func TestRecordAttemptRejectsMissingFields(t *testing.T) {
	ps := &mockProgressService{
		recordAttemptFunc: func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
			t.Fatal("service should not be called on a malformed body")
			return nil, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodPost, "/api/v1/progress", `{"verb":"go"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordAttemptUnknownVerbIs400(t *testing.T) {
	ps := &mockProgressService{
		recordAttemptFunc: func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
			return nil, fmt.Errorf("%w: %q", service.ErrUnknownVerb, rec.Verb)
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodPost, "/api/v1/progress", `{"verb":"blorb","isCorrect":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordAttemptStoreFailureIs500(t *testing.T) {
	ps := &mockProgressService{
		recordAttemptFunc: func(userID string, rec progress.AttemptRecord) (*dto.RecordAttemptResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodPost, "/api/v1/progress", `{"verb":"go","isCorrect":true}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetProgressDefaultReturnsAggregate(t *testing.T) {
	ps := &mockProgressService{
		getProgressFunc: func(userID string) (*dto.UserProgressDTO, error) {
			return &dto.UserProgressDTO{TotalAttempts: 10, StreakDays: 3}, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodGet, "/api/v1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserProgressDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.TotalAttempts)
	assert.Equal(t, 3, resp.StreakDays)
}

func TestGetProgressDifficultReturnsEmptyArrayNotNull(t *testing.T) {
	ps := &mockProgressService{
		getDifficultVerbsFunc: func(userID string, limit int) ([]progress.RankedVerb, error) {
			assert.Equal(t, 10, limit) // default when no limit param
			return nil, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodGet, "/api/v1/progress?type=difficult", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetProgressDifficultHonorsLimitParam(t *testing.T) {
	ps := &mockProgressService{
		getDifficultVerbsFunc: func(userID string, limit int) ([]progress.RankedVerb, error) {
			assert.Equal(t, 3, limit)
			return []progress.RankedVerb{{Verb: "see", Attempts: 10, Correct: 2, SuccessRate: 0.2}}, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodGet, "/api/v1/progress?type=difficult&limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ranked []progress.RankedVerb
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "see", ranked[0].Verb)
}

func TestGetProgressDifficultBadLimit(t *testing.T) {
	r := newProgressRouter(&mockProgressService{})
	w := doRequest(r, http.MethodGet, "/api/v1/progress?type=difficult&limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProgressStats(t *testing.T) {
	ps := &mockProgressService{
		getStatsFunc: func(userID string) ([]dto.VerbProgressDTO, error) {
			return []dto.VerbProgressDTO{{Verb: "go", Attempts: 5, Correct: 4, MasteryTier: 3}}, nil
		},
	}
	r := newProgressRouter(ps)

	w := doRequest(r, http.MethodGet, "/api/v1/progress?type=stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats []dto.VerbProgressDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].MasteryTier)
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	r := newProgressRouter(&mockProgressService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsInvalidToken(t *testing.T) {
	r := newProgressRouter(&mockProgressService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredAcceptsSessionCookie(t *testing.T) {
	ps := &mockProgressService{
		getProgressFunc: func(userID string) (*dto.UserProgressDTO, error) {
			assert.Equal(t, "user-1", userID)
			return &dto.UserProgressDTO{}, nil
		},
	}
	r := newProgressRouter(ps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "valid-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
