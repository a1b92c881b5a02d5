// Command practice is a small offline-tolerant client: it records practice
// attempts into the local durable queue and syncs them to the verbmaster API
// when the network allows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"verbmaster/internal/logger"
	"verbmaster/internal/progress"
	"verbmaster/internal/syncqueue"
)

func main() {
	godotenv.Load()
	logger.Init()

	var (
		verb    = flag.String("verb", "", "verb that was practiced")
		correct = flag.Bool("correct", false, "whether the answer was correct")
		flush   = flag.Bool("flush", false, "flush the queue without recording")
		status  = flag.Bool("status", false, "print queue status and exit")
	)
	flag.Parse()

	queuePath := os.Getenv("VERBMASTER_QUEUE")
	if queuePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot resolve home directory")
		}
		queuePath = filepath.Join(home, ".verbmaster", "queue.json")
	}

	store := syncqueue.NewHTTPStore(
		envOr("VERBMASTER_API", "http://localhost:8080"),
		os.Getenv("VERBMASTER_TOKEN"),
	)
	coord, err := syncqueue.New(store, syncqueue.Options{
		Path:            queuePath,
		SendOnEnqueue:   true,
		DeliveryTimeout: 10 * time.Second,
		Backoff:         30 * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot open sync queue")
	}
	defer coord.Close()

	switch {
	case *status:
		fmt.Printf("queue: %d pending, state %s\n", coord.Pending(), coord.State())

	case *flush:
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := coord.Flush(ctx); err != nil {
			log.Warn().Err(err).Int("pending", coord.Pending()).Msg("Flush incomplete, entries kept for retry")
		} else {
			fmt.Println("queue flushed")
		}

	case *verb != "":
		rec, err := progress.NewAttempt(*verb, *correct, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid attempt")
		}
		if err := coord.Enqueue(rec); err != nil {
			log.Warn().Err(err).Msg("Attempt kept in memory only")
		}
		fmt.Printf("recorded %q (correct=%v), %d pending\n", rec.Verb, rec.Correct, coord.Pending())

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
