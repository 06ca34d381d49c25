package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
	"github.com/romanselivan/goldantilop/internal/store"
)

func testUsers(t *testing.T) *store.Users {
	t.Helper()
	mem := sheets.NewMemory()
	mem.SetTable(store.UsersSheet, [][]string{
		{"USER_ID", "USERNAME", "USER_STATUS", "USER_STATE",
			"REFERRAL1_ID", "REFERRAL1_USERNAME", "REFERRAL1_STATUS", "REFERRAL1_MESSAGE_ID",
			"REFERRAL2_ID", "REFERRAL2_USERNAME", "REFERRAL2_STATUS", "REFERRAL2_MESSAGE_ID"},
		{"100", "admin1", "admin", "admin_menu", "", "", "", "", "", "", "", ""},
		{"200", "carol", "active", "main_menu", "", "", "", "", "", "", "", ""},
		{"201", "dave", "active", "main_menu", "", "", "", "", "", "", "", ""},
		{"202", "mallory", "ban", "", "", "", "", "", "", "", "", ""},
		{"203", "peggy", "pending", "waiting_referral", "", "", "", "", "", "", "", ""},
		{"300", "bob", "pending", "waiting_referral", "", "", "", "", "", "", "", ""},
	})
	return store.NewUsers(mem, time.Minute, zerolog.Nop())
}

func TestEvaluate(t *testing.T) {
	slot := func(s domain.ReferralStatus) domain.ReferralSlot {
		return domain.ReferralSlot{ReferrerID: "x", Status: s}
	}
	cases := []struct {
		name string
		a, b domain.ReferralStatus
		want Outcome
	}{
		{"both unset", domain.ReferralUnset, domain.ReferralUnset, OutcomePending},
		{"one asked", domain.ReferralAsked, domain.ReferralUnset, OutcomePending},
		{"one confirmed", domain.ReferralConfirmed, domain.ReferralUnset, OutcomeActivated},
		{"confirmed beats declined", domain.ReferralDeclined, domain.ReferralConfirmed, OutcomeActivated},
		{"confirmed beats asked", domain.ReferralConfirmed, domain.ReferralAsked, OutcomeActivated},
		{"one declined", domain.ReferralDeclined, domain.ReferralAsked, OutcomePending},
		{"both declined", domain.ReferralDeclined, domain.ReferralDeclined, OutcomeBanned},
		{"both confirmed", domain.ReferralConfirmed, domain.ReferralConfirmed, OutcomeActivated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate([2]domain.ReferralSlot{slot(tc.a), slot(tc.b)}))
		})
	}
}

func TestNameReferralValidation(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, err := users.Get(ctx, "300")
	require.NoError(t, err)

	_, _, err = svc.NameReferral(ctx, bob, "carol")
	assert.ErrorIs(t, err, domain.ErrUnknownReferral, "handle must start with @")

	_, _, err = svc.NameReferral(ctx, bob, "@bob")
	assert.ErrorIs(t, err, domain.ErrSelfReferral)

	_, _, err = svc.NameReferral(ctx, bob, "@stranger")
	assert.ErrorIs(t, err, domain.ErrUnknownReferral)

	_, _, err = svc.NameReferral(ctx, bob, "@mallory")
	assert.ErrorIs(t, err, domain.ErrUnknownReferral, "banned users cannot vouch")

	_, _, err = svc.NameReferral(ctx, bob, "@peggy")
	assert.ErrorIs(t, err, domain.ErrUnknownReferral, "pending users cannot vouch")
}

func TestNameReferralFillsSlotsInOrder(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, err := users.Get(ctx, "300")
	require.NoError(t, err)

	ref, slot, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)
	assert.Equal(t, "200", ref.ID)
	assert.Equal(t, 0, slot)

	bob, err = users.Get(ctx, "300")
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralAsked, bob.Slots[0].Status)

	// Duplicate, in either slot position.
	_, _, err = svc.NameReferral(ctx, bob, "@carol")
	assert.ErrorIs(t, err, domain.ErrDuplicateReferral)

	ref, slot, err = svc.NameReferral(ctx, bob, "@dave")
	require.NoError(t, err)
	assert.Equal(t, "201", ref.ID)
	assert.Equal(t, 1, slot)

	bob, err = users.Get(ctx, "300")
	require.NoError(t, err)
	_, _, err = svc.NameReferral(ctx, bob, "@admin1")
	assert.ErrorIs(t, err, domain.ErrSlotsFull)
}

func TestConfirmActivatesAndSurfacesStalePrompt(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, _ := users.Get(ctx, "300")
	_, slot0, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)
	require.NoError(t, svc.RecordPrompt(ctx, "300", slot0, 71))

	bob, _ = users.Get(ctx, "300")
	_, slot1, err := svc.NameReferral(ctx, bob, "@dave")
	require.NoError(t, err)
	require.NoError(t, svc.RecordPrompt(ctx, "300", slot1, 72))

	user, stale, outcome, err := svc.ResolveSlot(ctx, "300", "201", Confirm)
	require.NoError(t, err)
	assert.Equal(t, OutcomeActivated, outcome)
	assert.Equal(t, domain.StatusActive, user.Status)
	assert.Equal(t, "200", stale.ReferrerID, "carol's prompt went stale")
	assert.Equal(t, 71, stale.MessageID)

	stored, err := users.Get(ctx, "300")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Equal(t, domain.StateMainMenu, stored.State)
}

func TestDeclineThenConfirmStillActivates(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, _ := users.Get(ctx, "300")
	_, _, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)

	_, _, outcome, err := svc.ResolveSlot(ctx, "300", "200", Decline)
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome, "one decline keeps the door open")

	bob, _ = users.Get(ctx, "300")
	_, _, err = svc.NameReferral(ctx, bob, "@dave")
	require.NoError(t, err)

	user, _, outcome, err := svc.ResolveSlot(ctx, "300", "201", Confirm)
	require.NoError(t, err)
	assert.Equal(t, OutcomeActivated, outcome)
	assert.Equal(t, domain.StatusActive, user.Status)
}

func TestBothDeclinesBan(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, _ := users.Get(ctx, "300")
	_, _, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)
	bob, _ = users.Get(ctx, "300")
	_, _, err = svc.NameReferral(ctx, bob, "@dave")
	require.NoError(t, err)

	_, _, outcome, err := svc.ResolveSlot(ctx, "300", "200", Decline)
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)

	user, _, outcome, err := svc.ResolveSlot(ctx, "300", "201", Decline)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBanned, outcome)
	assert.Equal(t, domain.StatusBanned, user.Status)

	// Banned is terminal: late answers are conflicts.
	_, _, _, err = svc.ResolveSlot(ctx, "300", "200", Confirm)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestReferrerBanIsImmediate(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, _ := users.Get(ctx, "300")
	_, _, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)

	user, err := svc.Ban(ctx, "300")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBanned, user.Status)

	stored, _ := users.Get(ctx, "300")
	assert.Equal(t, domain.StatusBanned, stored.Status)
}

func TestResolveSlotUnknownReferrer(t *testing.T) {
	users := testUsers(t)
	svc := New(users, zerolog.Nop())
	ctx := context.Background()

	bob, _ := users.Get(ctx, "300")
	_, _, err := svc.NameReferral(ctx, bob, "@carol")
	require.NoError(t, err)

	_, _, _, err = svc.ResolveSlot(ctx, "300", "999", Confirm)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
