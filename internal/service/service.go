package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"wordle-results/internal/logging"
	"wordle-results/internal/types"
)

// DateLayout is the canonical day key format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ErrValidation marks submissions rejected before touching storage.
var ErrValidation = errors.New("invalid submission")

// Store is the persistence the service needs.
type Store interface {
	Load() types.Results
	Update(fn func(types.Results) error) error
	Reset() error
}

// Service implements submit and query over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to pick today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Service on top of store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in server local time.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// Submit stores the player's record under today's date, replacing any earlier
// record for that player, and returns the full bucket for today.
func (s *Service) Submit(ctx context.Context, in *types.Submission) (types.DayBucket, error) {
	player, err := validate(in)
	if err != nil {
		logging.WarnCtx(ctx, "Rejected submission: %v", err)
		return nil, err
	}

	today := s.Today()
	record := types.GameRecord{
		Guesses:  in.Guesses,
		States:   lo.Ternary(in.States == nil, [][]json.RawMessage{}, in.States),
		Success:  *in.Success,
		Attempts: len(in.Guesses),
		Duration: in.Duration,
	}

	var bucket types.DayBucket
	err = s.store.Update(func(results types.Results) error {
		bucket = results[today]
		if bucket == nil {
			bucket = types.DayBucket{}
		}
		bucket[player] = record
		results[today] = bucket
		return nil
	})
	if err != nil {
		logging.ErrorCtx(ctx, "Failed to save submission for %s on %s: %v", player, today, err)
		return nil, err
	}

	logging.InfoCtx(ctx, "Stored result for %s on %s (attempts: %d, success: %t)", player, today, record.Attempts, record.Success)
	return bucket, nil
}

// Results returns the bucket for date, or for today when date is empty.
// A date with no submissions yields an empty bucket.
func (s *Service) Results(ctx context.Context, date string) types.DayBucket {
	date = lo.CoalesceOrEmpty(strings.TrimSpace(date), s.Today())
	bucket := s.store.Load()[date]
	if bucket == nil {
		bucket = types.DayBucket{}
	}
	logging.InfoCtx(ctx, "Returning %d results for %s", len(bucket), date)
	return bucket
}

// Clear drops every stored result.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Reset(); err != nil {
		logging.ErrorCtx(ctx, "Failed to clear results: %v", err)
		return err
	}
	logging.InfoCtx(ctx, "Cleared all stored results")
	return nil
}

// validate checks required fields and returns the normalised player name.
func validate(in *types.Submission) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: no data provided", ErrValidation)
	}
	player := strings.TrimSpace(in.Player)
	var missing []string
	if player == "" {
		missing = append(missing, "player")
	}
	if in.Guesses == nil {
		missing = append(missing, "guesses")
	}
	if in.Success == nil {
		missing = append(missing, "success")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return player, nil
}
