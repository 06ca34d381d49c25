package exchange

import (
	"context"
	"math"

	"github.com/romanselivan/goldantilop/internal/domain"
)

// Summary is the admin analytics view: completed exchanges only.
type Summary struct {
	TotalExchanges int
	AverageVolume  int64
	PopularSource  string
	PopularTarget  string
}

func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	reqs, err := s.requests.All(ctx)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	var volume float64
	counts := map[[2]string]int{}
	for _, r := range reqs {
		if r.Status != domain.RequestCompleted {
			continue
		}
		sum.TotalExchanges++
		volume += r.Amount
		counts[[2]string{r.Source, r.Target}]++
	}
	if sum.TotalExchanges > 0 {
		sum.AverageVolume = int64(math.Ceil(volume / float64(sum.TotalExchanges)))
	}

	best := 0
	for pair, n := range counts {
		if n > best {
			best = n
			sum.PopularSource, sum.PopularTarget = pair[0], pair[1]
		}
	}
	return sum, nil
}
