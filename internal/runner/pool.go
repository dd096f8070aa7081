package runner

import (
	"context"
	"sync"
)

type Job func() error

// RunPool executes jobs with at most maxWorkers concurrently. Returns all
// errors. Cancelling ctx stops submission of queued jobs; jobs already
// started run to completion and the cancellation cause is appended once.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		if ctx.Err() != nil {
			wg.Wait()
			return append(errs, ctx.Err())
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return append(errs, ctx.Err())
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := j(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}
	wg.Wait()
	return errs
}
