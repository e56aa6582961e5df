package listbuilder

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Job is one list in a batch
type Job struct {
	Name   string // reported back, usually the input file
	Text   string
	Output string // empty picks a unique name
}

// JobResult pairs a job with its outcome
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// ConvertAll converts jobs with at most workers running at once. A failing
// job does not stop the others; results are in input order. The returned
// error is only set when ctx ends the batch early.
func (s *Service) ConvertAll(ctx context.Context, jobs []Job, workers int) ([]JobResult, error) {
	if workers < 1 {
		workers = s.cfg.Batch.Workers
	}
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := s.Convert(gctx, job.Text, job.Output)
			results[i] = JobResult{Job: job, Result: res, Err: err}
			if err != nil {
				s.logger.Warn("batch job failed", "job", job.Name, "error", err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
