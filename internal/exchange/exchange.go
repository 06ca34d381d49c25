// Package exchange computes quotes and drives exchange requests
// through their lifecycle: check -> run -> done, with cancellation from
// either of the first two states.
package exchange

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/store"
)

// Quote is a computed, not-yet-persisted exchange awaiting the user's
// confirmation. The rate is snapshotted here; later rate edits do not
// touch it.
type Quote struct {
	Source string
	Target string
	Rate   float64
	Amount float64
	Result int64
}

type Service struct {
	rates    *store.Rates
	requests *store.Requests
	log      zerolog.Logger
	now      func() time.Time
}

func New(rates *store.Rates, requests *store.Requests, log zerolog.Logger) *Service {
	return &Service{
		rates:    rates,
		requests: requests,
		log:      log.With().Str("component", "exchange").Logger(),
		now:      time.Now,
	}
}

// PairInfo returns the rate row the quote flow prompts with. First
// matching row in sheet order wins when duplicates exist.
func (s *Service) PairInfo(ctx context.Context, source, target string) (domain.Rate, error) {
	return s.rates.Pair(ctx, source, target)
}

// Quote is idempotent and side-effect free: look up the pair, enforce
// the minimum, round the result up to a whole unit of the target
// currency.
func (s *Service) Quote(ctx context.Context, source, target string, amount float64) (Quote, error) {
	rate, err := s.rates.Pair(ctx, source, target)
	if err != nil {
		return Quote{}, err
	}
	if amount < rate.MinAmount {
		return Quote{}, fmt.Errorf("%s %s < %s minimum: %w",
			formatNumber(amount), source, formatNumber(rate.MinAmount), domain.ErrBelowMinimum)
	}
	return Quote{
		Source: source,
		Target: target,
		Rate:   rate.Rate,
		Amount: amount,
		Result: int64(math.Ceil(amount * rate.Rate)),
	}, nil
}

// Create persists a confirmed quote as a new pending-review request.
// Ids are four characters; collisions against the store are re-rolled.
// The one-request-per-quote guard lives in the session layer, which
// must not call Create twice for the same quote.
func (s *Service) Create(ctx context.Context, user domain.User, q Quote) (domain.Request, error) {
	id := newRequestID()
	for {
		exists, err := s.requests.Exists(ctx, id)
		if err != nil {
			return domain.Request{}, err
		}
		if !exists {
			break
		}
		id = newRequestID()
	}

	now := s.now()
	req := domain.Request{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Source:    q.Source,
		Target:    q.Target,
		Amount:    q.Amount,
		Result:    q.Result,
		Status:    domain.RequestPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return domain.Request{}, err
	}

	s.log.Info().
		Str("request_id", id).
		Str("user_id", user.ID).
		Str("pair", q.Source+"/"+q.Target).
		Float64("amount", q.Amount).
		Int64("result", q.Result).
		Msg("request created")
	return req, nil
}

// SourceCurrencies lists the distinct source currencies on offer,
// sorted for a stable keyboard layout.
func (s *Service) SourceCurrencies(ctx context.Context) ([]string, error) {
	rates, err := s.rates.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range rates {
		if !seen[r.Source] {
			seen[r.Source] = true
			out = append(out, r.Source)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) TargetCurrencies(ctx context.Context, source string) ([]string, error) {
	rates, err := s.rates.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range rates {
		if r.Source == source && !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}
	sort.Strings(out)
	return out, nil
}

// newRequestID builds a short code from the current millisecond plus
// two random hex characters, uppercased. Collisions are expected now
// and then; Create re-rolls against the store.
func newRequestID() string {
	ms := time.Now().Nanosecond() / int(time.Millisecond)
	msPart := fmt.Sprintf("%03d", ms)[:2]
	return strings.ToUpper(fmt.Sprintf("%s%c%c", msPart, uuid.NewString()[0], uuid.NewString()[0]))
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}
