package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/exchange"
)

func TestFormatRequest(t *testing.T) {
	req := domain.Request{
		ID:        "12AB",
		Username:  "bob",
		Source:    "USD",
		Target:    "EUR",
		Amount:    1500,
		Result:    1350,
		Status:    domain.RequestPendingReview,
		CreatedAt: time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC),
	}

	text := formatRequest(req, false)
	assert.Contains(t, text, "#12AB")
	assert.Contains(t, text, "1,500 USD → 1,350 EUR")
	assert.Contains(t, text, "01.09.2026 12:30")
	assert.NotContains(t, text, "@bob", "owners do not see their own handle")

	admin := formatRequest(req, true)
	assert.Contains(t, admin, "From: @bob")
}

func TestFormatQuote(t *testing.T) {
	text := formatQuote(exchange.Quote{
		Source: "USD", Target: "EUR", Rate: 0.9, Amount: 100, Result: 90,
	})
	assert.Contains(t, text, "100 USD → 90 EUR")
	assert.Contains(t, text, "0.900")
}

func TestFormatRatesCollapsesDuplicates(t *testing.T) {
	text := formatRates([]domain.Rate{
		{Source: "USD", Target: "EUR", Rate: 0.90, MinAmount: 100},
		{Source: "USD", Target: "EUR", Rate: 0.95, MinAmount: 50},
		{Source: "USD", Target: "USD", Rate: 1, MinAmount: 1},
		{Source: "EUR", Target: "USD", Rate: 1.08, MinAmount: 1000},
	})

	assert.Contains(t, text, "1 USD = 0.950 EUR", "display shows the best rate on offer")
	assert.NotContains(t, text, "0.900")
	assert.NotContains(t, text, "USD = 1.000 USD", "same-currency rows are noise")
	assert.Contains(t, text, "1 EUR = 1.080 USD (min: 1,000)")
}

func TestFormatRatesEmpty(t *testing.T) {
	assert.Equal(t, "No rates available right now.", formatRates(nil))
}
