package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
)

const (
	RatesSheet = "Rates"

	fSourceCurrency = "SOURCE_CURRENCY"
	fTargetCurrency = "TARGET_CURRENCY"
	fRateValue      = "RATE"
	fMinAmount      = "MIN_AMOUNT"
)

// Rates reads the admin-maintained rates table. The table is keyed by
// the (source, target) pair rather than a single id column; single
// currency lookups match either side of the pair.
type Rates struct{ t *Table }

func NewRates(src sheets.ValueSource, ttl time.Duration, log zerolog.Logger) *Rates {
	return &Rates{t: NewTable(src, RatesSheet, fSourceCurrency, ttl, log)}
}

func (r *Rates) All(ctx context.Context) ([]domain.Rate, error) {
	recs, err := r.t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rates := make([]domain.Rate, 0, len(recs))
	for _, rec := range recs {
		rate, err := rateFromRecord(rec)
		if err != nil {
			// A malformed row is an admin data-entry slip, not a reason
			// to hide the rest of the table.
			continue
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// Pair returns the first row in sheet order matching (source, target).
// Duplicate rows for the same pair may exist; first match wins.
func (r *Rates) Pair(ctx context.Context, source, target string) (domain.Rate, error) {
	rates, err := r.All(ctx)
	if err != nil {
		return domain.Rate{}, err
	}
	for _, rate := range rates {
		if rate.Source == source && rate.Target == target {
			return rate, nil
		}
	}
	return domain.Rate{}, fmt.Errorf("pair %s/%s: %w", source, target, domain.ErrRateNotFound)
}

// ByCurrency returns every row where the currency appears on either
// side of the pair.
func (r *Rates) ByCurrency(ctx context.Context, currency string) ([]domain.Rate, error) {
	rates, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Rate
	for _, rate := range rates {
		if rate.Source == currency || rate.Target == currency {
			out = append(out, rate)
		}
	}
	return out, nil
}

func rateFromRecord(rec Record) (domain.Rate, error) {
	value, err := parseSheetNumber(rec[fRateValue])
	if err != nil {
		return domain.Rate{}, fmt.Errorf("rate %q: %w", rec[fRateValue], err)
	}
	min, err := parseSheetNumber(rec[fMinAmount])
	if err != nil {
		return domain.Rate{}, fmt.Errorf("min amount %q: %w", rec[fMinAmount], err)
	}
	return domain.Rate{
		Source:    rec[fSourceCurrency],
		Target:    rec[fTargetCurrency],
		Rate:      value,
		MinAmount: min,
	}, nil
}

// parseSheetNumber tolerates the thousand separators admins type into
// the sheet ("1,000").
func parseSheetNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}
