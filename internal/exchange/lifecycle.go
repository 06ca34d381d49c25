package exchange

import (
	"context"
	"fmt"

	"github.com/romanselivan/goldantilop/internal/domain"
)

// transition moves a request to next if its current status is in from;
// anything else is a state conflict. Terminal states never appear in a
// from set, so done/cancel are monotonic.
func (s *Service) transition(ctx context.Context, id string, from []domain.RequestStatus, next domain.RequestStatus) (domain.Request, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	allowed := false
	for _, f := range from {
		if req.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.Request{}, fmt.Errorf("request %s is %q: %w", id, req.Status, domain.ErrStateConflict)
	}

	now := s.now()
	if err := s.requests.SetStatus(ctx, id, next, now); err != nil {
		return domain.Request{}, err
	}
	req.Status = next
	req.UpdatedAt = now

	s.log.Info().
		Str("request_id", id).
		Str("status", string(next)).
		Msg("request transitioned")
	return req, nil
}

// Accept: admin takes a pending request into work.
func (s *Service) Accept(ctx context.Context, id string) (domain.Request, error) {
	return s.transition(ctx, id, []domain.RequestStatus{domain.RequestPendingReview}, domain.RequestInProgress)
}

// Reject: admin cancels a not-yet-completed request. The reason, if
// any, travels with the notification, not the stored row.
func (s *Service) Reject(ctx context.Context, id string) (domain.Request, error) {
	return s.transition(ctx, id,
		[]domain.RequestStatus{domain.RequestPendingReview, domain.RequestInProgress},
		domain.RequestCancelled)
}

// Complete: admin marks an in-progress request done.
func (s *Service) Complete(ctx context.Context, id string) (domain.Request, error) {
	return s.transition(ctx, id, []domain.RequestStatus{domain.RequestInProgress}, domain.RequestCompleted)
}

// CancelByOwner cancels the owner's own active request. A request that
// is not theirs reads as absent; a terminal one is not cancellable.
func (s *Service) CancelByOwner(ctx context.Context, id, ownerID string) (domain.Request, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if req.UserID != ownerID {
		return domain.Request{}, fmt.Errorf("request %s: %w", id, domain.ErrNotFound)
	}
	if !req.Status.Active() {
		return domain.Request{}, fmt.Errorf("request %s is %q: %w", id, req.Status, domain.ErrNotCancellable)
	}

	now := s.now()
	if err := s.requests.SetStatus(ctx, id, domain.RequestCancelled, now); err != nil {
		return domain.Request{}, err
	}
	req.Status = domain.RequestCancelled
	req.UpdatedAt = now
	s.log.Info().Str("request_id", id).Str("user_id", ownerID).Msg("request cancelled by owner")
	return req, nil
}

// ActiveForUser lists the owner's requests still awaiting disposition.
func (s *Service) ActiveForUser(ctx context.Context, userID string) ([]domain.Request, error) {
	reqs, err := s.requests.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterActive(reqs), nil
}

func (s *Service) Active(ctx context.Context) ([]domain.Request, error) {
	reqs, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterActive(reqs), nil
}

func (s *Service) Completed(ctx context.Context) ([]domain.Request, error) {
	reqs, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Request
	for _, r := range reqs {
		if r.Status == domain.RequestCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func filterActive(reqs []domain.Request) []domain.Request {
	var out []domain.Request
	for _, r := range reqs {
		if r.Status.Active() {
			out = append(out, r)
		}
	}
	return out
}
