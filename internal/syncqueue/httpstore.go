package syncqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"verbmaster/internal/progress"
)

// HTTPStore delivers attempts to the verbmaster API. A 4xx response other
// than 401/403/408/429 means the entry itself is bad and retrying cannot
// help, so it is reported as permanent. Auth failures keep entries queued:
// an expired session must never destroy buffered attempts.
type HTTPStore struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type applyPayload struct {
	Verb      string `json:"verb"`
	IsCorrect bool   `json:"isCorrect"`
	AttemptID string `json:"attemptId"`
}

func (s *HTTPStore) Apply(ctx context.Context, rec progress.AttemptRecord) error {
	body, err := json.Marshal(applyPayload{
		Verb:      rec.Verb,
		IsCorrect: rec.Correct,
		AttemptID: rec.ID,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/v1/progress", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver attempt: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthRequired, resp.StatusCode)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("remote store busy: status %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d", ErrPermanent, resp.StatusCode)
	default:
		return fmt.Errorf("remote store failure: status %d", resp.StatusCode)
	}
}
