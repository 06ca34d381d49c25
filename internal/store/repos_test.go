package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
)

func usersMemory() *sheets.Memory {
	mem := sheets.NewMemory()
	mem.SetTable(UsersSheet, [][]string{
		{fUserID, fUsername, fUserStatus, fUserState,
			fRef1ID, fRef1Name, fRef1Status, fRef1Message,
			fRef2ID, fRef2Name, fRef2Status, fRef2Message},
		{"100", "admin1", "admin", "admin_menu", "", "", "", "", "", "", "", ""},
		{"200", "carol", "active", "main_menu", "", "", "", "", "", "", "", ""},
		{"300", "bob", "pending", "waiting_referral", "200", "carol", "ask", "41", "", "", "", ""},
	})
	return mem
}

func TestUsersRoundTrip(t *testing.T) {
	users := NewUsers(usersMemory(), time.Minute, zerolog.Nop())

	u, err := users.Get(context.Background(), "300")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, domain.StatusPending, u.Status)
	assert.Equal(t, "carol", u.Slots[0].ReferrerName)
	assert.Equal(t, domain.ReferralAsked, u.Slots[0].Status)
	assert.Equal(t, 41, u.Slots[0].PromptMessageID)
	assert.True(t, u.Slots[1].Empty())
}

func TestUsersByUsername(t *testing.T) {
	users := NewUsers(usersMemory(), time.Minute, zerolog.Nop())

	u, err := users.ByUsername(context.Background(), "CAROL")
	require.NoError(t, err)
	assert.Equal(t, "200", u.ID)

	_, err = users.ByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsersAdmins(t *testing.T) {
	users := NewUsers(usersMemory(), time.Minute, zerolog.Nop())

	admins, err := users.Admins(context.Background())
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "100", admins[0].ID)
}

func TestUsersSetSlot(t *testing.T) {
	users := NewUsers(usersMemory(), time.Minute, zerolog.Nop())

	err := users.SetSlot(context.Background(), "300", 1, domain.ReferralSlot{
		ReferrerID:   "100",
		ReferrerName: "admin1",
		Status:       domain.ReferralAsked,
	})
	require.NoError(t, err)

	u, err := users.Get(context.Background(), "300")
	require.NoError(t, err)
	assert.Equal(t, "admin1", u.Slots[1].ReferrerName)
	assert.Equal(t, domain.ReferralAsked, u.Slots[1].Status)
	// Slot 0 untouched.
	assert.Equal(t, "carol", u.Slots[0].ReferrerName)
}

func ratesMemory() *sheets.Memory {
	mem := sheets.NewMemory()
	mem.SetTable(RatesSheet, [][]string{
		{fSourceCurrency, fTargetCurrency, fRateValue, fMinAmount},
		{"USD", "EUR", "0.90", "100"},
		{"USD", "EUR", "0.95", "50"}, // duplicate pair, must lose to the first
		{"EUR", "USD", "1.08", "1,000"},
		{"USD", "JPY", "not-a-number", "1"}, // malformed, skipped
	})
	return mem
}

func TestRatesPairFirstMatchWins(t *testing.T) {
	rates := NewRates(ratesMemory(), time.Minute, zerolog.Nop())

	r, err := rates.Pair(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.90, r.Rate)
	assert.Equal(t, 100.0, r.MinAmount)

	_, err = rates.Pair(context.Background(), "USD", "JPY")
	assert.ErrorIs(t, err, domain.ErrRateNotFound, "malformed rows do not quote")

	_, err = rates.Pair(context.Background(), "GBP", "CHF")
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestRatesByCurrencyMatchesEitherColumn(t *testing.T) {
	rates := NewRates(ratesMemory(), time.Minute, zerolog.Nop())

	rs, err := rates.ByCurrency(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Len(t, rs, 3)
}

func TestRatesThousandSeparators(t *testing.T) {
	rates := NewRates(ratesMemory(), time.Minute, zerolog.Nop())

	r, err := rates.Pair(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, r.MinAmount)
}

func requestsMemory() *sheets.Memory {
	mem := sheets.NewMemory()
	mem.SetTable(RequestsSheet, [][]string{
		{fRequestID, fReqUserID, fReqUsername, fReqSource, fReqTarget,
			fReqAmount, fReqResult, fReqStatus, fReqCreated, fReqUpdated},
	})
	return mem
}

func TestRequestsCreateAndGet(t *testing.T) {
	requests := NewRequests(requestsMemory(), time.Minute, zerolog.Nop())

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	req := domain.Request{
		ID:        "12AB",
		UserID:    "300",
		Username:  "bob",
		Source:    "USD",
		Target:    "EUR",
		Amount:    100,
		Result:    90,
		Status:    domain.RequestPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, requests.Create(context.Background(), req))

	got, err := requests.Get(context.Background(), "12AB")
	require.NoError(t, err)
	assert.Equal(t, req.Amount, got.Amount)
	assert.Equal(t, req.Result, got.Result)
	assert.Equal(t, domain.RequestPendingReview, got.Status)
	assert.True(t, got.CreatedAt.Equal(now))

	exists, err := requests.Exists(context.Background(), "12AB")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = requests.Exists(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRequestsSetStatus(t *testing.T) {
	requests := NewRequests(requestsMemory(), time.Minute, zerolog.Nop())

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, requests.Create(context.Background(), domain.Request{
		ID: "77CD", UserID: "300", Username: "bob",
		Source: "USD", Target: "EUR", Amount: 100, Result: 90,
		Status: domain.RequestPendingReview, CreatedAt: now, UpdatedAt: now,
	}))

	later := now.Add(time.Hour)
	require.NoError(t, requests.SetStatus(context.Background(), "77CD", domain.RequestInProgress, later))

	got, err := requests.Get(context.Background(), "77CD")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestInProgress, got.Status)
	assert.True(t, got.UpdatedAt.Equal(later))
	assert.True(t, got.CreatedAt.Equal(now), "created timestamp untouched")
}
