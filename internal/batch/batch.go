// Package batch runs independent per-file jobs on a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Run calls fn for every item with at most jobs calls in flight.
// Items are independent: a failure does not stop the others, and all
// failures are joined in item order. Items not yet started when ctx is
// cancelled fail with the context error.
func Run(ctx context.Context, items []string, jobs int, fn func(ctx context.Context, item string) error) error {
	if jobs < 1 {
		jobs = 1
	}

	errs := make([]error, len(items))
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			errs[i] = fmt.Errorf("%s: %w", item, err)
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errs[i] = fmt.Errorf("%s: %w", item, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(i int, item string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := fn(ctx, item); err != nil {
				errs[i] = fmt.Errorf("%s: %w", item, err)
			}
		}(i, item)
	}

	wg.Wait()
	return errors.Join(errs...)
}
