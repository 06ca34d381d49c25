package bot

import (
	"fmt"
	"strings"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/exchange"
)

func statusText(s domain.RequestStatus) string {
	switch s {
	case domain.RequestPendingReview:
		return "⏳ pending review"
	case domain.RequestInProgress:
		return "⚙️ in progress"
	case domain.RequestCompleted:
		return "✅ completed"
	case domain.RequestCancelled:
		return "✖️ cancelled"
	default:
		return string(s)
	}
}

func formatRequest(req domain.Request, isAdmin bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request #%s\n", req.ID)
	if isAdmin {
		fmt.Fprintf(&b, "From: @%s\n", req.Username)
	}
	fmt.Fprintf(&b, "%s %s → %s %s\n",
		formatAmount(req.Amount), req.Source, formatInt(req.Result), req.Target)
	fmt.Fprintf(&b, "Status: %s\n", statusText(req.Status))
	if !req.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created: %s", req.CreatedAt.Format("02.01.2006 15:04"))
	}
	return b.String()
}

func formatQuote(q exchange.Quote) string {
	return fmt.Sprintf(
		"💱 %s %s → %s %s\nRate: %.3f\n\nConfirm to send the request to the admins.",
		formatAmount(q.Amount), q.Source, formatInt(q.Result), q.Target, q.Rate,
	)
}

// formatRates collapses duplicate pair rows for display, showing the
// highest rate on offer; quoting itself uses first-match (see
// internal/store.Rates.Pair).
func formatRates(rates []domain.Rate) string {
	type info struct {
		rate float64
		min  float64
	}
	best := map[[2]string]info{}
	var order [][2]string
	for _, r := range rates {
		if r.Source == r.Target {
			continue
		}
		key := [2]string{r.Source, r.Target}
		cur, seen := best[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || r.Rate > cur.rate {
			best[key] = info{rate: r.Rate, min: r.MinAmount}
		}
	}

	if len(order) == 0 {
		return "No rates available right now."
	}
	var b strings.Builder
	b.WriteString("📈 Current rates:\n\n")
	for _, key := range order {
		in := best[key]
		fmt.Fprintf(&b, "1 %s = %.3f %s (min: %s)\n",
			key[0], in.rate, key[1], formatAmount(in.min))
	}
	return b.String()
}
