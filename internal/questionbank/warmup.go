package questionbank

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rmfaudit/internal/category"
)

const warmupConcurrency = 4

// Warmup loads every category concurrently so a cache in front of the source
// is populated before traffic arrives. It returns question counts per category.
func Warmup(ctx context.Context, bank Bank, categories []category.Category) (map[category.Category]int, error) {
	counts := make([]int, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)
	for i, c := range categories {
		g.Go(func() error {
			qs, err := bank.LoadQuestions(gctx, c)
			if err != nil {
				return fmt.Errorf("warm %s: %w", c, err)
			}
			counts[i] = len(qs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[category.Category]int, len(categories))
	for i, c := range categories {
		out[c] = counts[i]
	}
	return out, nil
}
