// Package onboarding drives a pending user through the referral gate:
// two vouching slots, either confirmation activates, two declines ban.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/store"
)

type Resolution int

const (
	Confirm Resolution = iota
	Decline
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeActivated
	OutcomeBanned
)

// Evaluate is the level-triggered check over both slots, run after
// every slot mutation regardless of which slot changed: any confirmed
// slot wins, two declined slots ban, anything else stays pending.
func Evaluate(slots [2]domain.ReferralSlot) Outcome {
	for _, s := range slots {
		if s.Status == domain.ReferralConfirmed {
			return OutcomeActivated
		}
	}
	if slots[0].Status == domain.ReferralDeclined && slots[1].Status == domain.ReferralDeclined {
		return OutcomeBanned
	}
	return OutcomePending
}

// StalePrompt points at a confirmation prompt that no longer needs an
// answer because the other slot resolved the onboarding first.
type StalePrompt struct {
	ReferrerID string
	MessageID  int
}

type Service struct {
	users *store.Users
	log   zerolog.Logger
}

func New(users *store.Users, log zerolog.Logger) *Service {
	return &Service{users: users, log: log.With().Str("component", "onboarding").Logger()}
}

// NameReferral validates the handle the pending user typed and fills
// the first empty slot with status "asked". It returns the referrer
// (so the caller can send them a prompt) and the slot index written.
func (s *Service) NameReferral(ctx context.Context, user domain.User, handle string) (domain.User, int, error) {
	if !strings.HasPrefix(handle, "@") || len(handle) < 2 {
		return domain.User{}, 0, fmt.Errorf("%w: handle must start with @", domain.ErrUnknownReferral)
	}
	handle = strings.TrimPrefix(handle, "@")

	if strings.EqualFold(handle, user.Username) {
		return domain.User{}, 0, domain.ErrSelfReferral
	}
	for _, slot := range user.Slots {
		if strings.EqualFold(slot.ReferrerName, handle) {
			return domain.User{}, 0, domain.ErrDuplicateReferral
		}
	}

	slot := -1
	for i := range user.Slots {
		if user.Slots[i].Empty() {
			slot = i
			break
		}
	}
	if slot == -1 {
		return domain.User{}, 0, domain.ErrSlotsFull
	}

	referrer, err := s.users.ByUsername(ctx, handle)
	if err != nil {
		if isNotFound(err) {
			return domain.User{}, 0, domain.ErrUnknownReferral
		}
		return domain.User{}, 0, err
	}
	if referrer.Status != domain.StatusActive && referrer.Status != domain.StatusAdmin {
		return domain.User{}, 0, domain.ErrUnknownReferral
	}
	if referrer.ID == user.ID {
		return domain.User{}, 0, domain.ErrSelfReferral
	}

	err = s.users.SetSlot(ctx, user.ID, slot, domain.ReferralSlot{
		ReferrerID:   referrer.ID,
		ReferrerName: referrer.Username,
		Status:       domain.ReferralAsked,
	})
	if err != nil {
		return domain.User{}, 0, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("referrer", referrer.Username).
		Int("slot", slot).
		Msg("referral named")
	return referrer, slot, nil
}

// RecordPrompt stores the message id of the confirmation prompt sent to
// the referrer so it can be retracted if it goes stale.
func (s *Service) RecordPrompt(ctx context.Context, userID string, slot, messageID int) error {
	return s.users.SetSlotPrompt(ctx, userID, slot, messageID)
}

// ResolveSlot applies a referrer's answer, re-evaluates the aggregate
// state and persists the consequences. The returned user reflects the
// post-transition record; stale carries the other slot's outstanding
// prompt when the onboarding just resolved.
func (s *Service) ResolveSlot(ctx context.Context, userID, referrerID string, res Resolution) (domain.User, StalePrompt, Outcome, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, StalePrompt{}, OutcomePending, err
	}
	// Banned is terminal: late referrer answers change nothing.
	if user.Status == domain.StatusBanned {
		return domain.User{}, StalePrompt{}, OutcomePending,
			fmt.Errorf("user %s is banned: %w", userID, domain.ErrStateConflict)
	}

	slot := -1
	for i := range user.Slots {
		if user.Slots[i].ReferrerID == referrerID {
			slot = i
			break
		}
	}
	if slot == -1 {
		return domain.User{}, StalePrompt{}, OutcomePending,
			fmt.Errorf("referrer %s has no slot on user %s: %w", referrerID, userID, domain.ErrNotFound)
	}

	status := domain.ReferralConfirmed
	if res == Decline {
		status = domain.ReferralDeclined
	}
	if err := s.users.SetSlotStatus(ctx, userID, slot, status); err != nil {
		return domain.User{}, StalePrompt{}, OutcomePending, err
	}
	user.Slots[slot].Status = status

	outcome := Evaluate(user.Slots)
	var stale StalePrompt
	if outcome != OutcomePending {
		other := user.Slots[1-slot]
		if other.Status == domain.ReferralAsked && other.PromptMessageID != 0 {
			stale = StalePrompt{ReferrerID: other.ReferrerID, MessageID: other.PromptMessageID}
		}
	}

	switch outcome {
	case OutcomeActivated:
		if err := s.users.SetStatus(ctx, userID, domain.StatusActive, domain.StateMainMenu); err != nil {
			return domain.User{}, StalePrompt{}, OutcomePending, err
		}
		user.Status = domain.StatusActive
		user.State = domain.StateMainMenu
	case OutcomeBanned:
		if err := s.users.SetStatus(ctx, userID, domain.StatusBanned, ""); err != nil {
			return domain.User{}, StalePrompt{}, OutcomePending, err
		}
		user.Status = domain.StatusBanned
	}

	s.log.Info().
		Str("user_id", userID).
		Str("referrer_id", referrerID).
		Int("slot", slot).
		Str("slot_status", string(status)).
		Int("outcome", int(outcome)).
		Msg("referral slot resolved")
	return user, stale, outcome, nil
}

// Ban is the referrer-initiated hard stop: the user is banned
// immediately, whatever the other slot says.
func (s *Service) Ban(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.SetStatus(ctx, userID, domain.StatusBanned, ""); err != nil {
		return domain.User{}, err
	}
	user.Status = domain.StatusBanned
	s.log.Info().Str("user_id", userID).Msg("user banned by referrer")
	return user, nil
}

// NamedReferrals counts the filled slots, which is what the prompt flow
// keys off: 0 asks for the first handle, 1 for the second, 2 waits.
func NamedReferrals(user domain.User) int {
	n := 0
	for _, slot := range user.Slots {
		if !slot.Empty() {
			n++
		}
	}
	return n
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
