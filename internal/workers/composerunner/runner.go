// Package composerunner drains the composition queue with a fixed pool of workers.
package composerunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"certforge/internal/logger"
	"certforge/internal/metrics"
	"certforge/internal/ports"
)

const defaultPollInterval = 500 * time.Millisecond

// ErrNotQueued is returned by ProcessInline when the certificate has no
// queued job, usually because a background worker claimed it first.
var ErrNotQueued = errors.New("composition job not queued")

// Processor performs the composition work for one certificate.
type Processor interface {
	Process(ctx context.Context, certificateID string) error
}

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	Log          logger.Logger
	Metrics      *metrics.Metrics
}

// Run claims queued jobs and processes them until ctx is cancelled. It
// returns once every worker has finished its current job.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, cfg Config) {
	if cfg.Concurrency < 1 {
		return
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	jobs := make(chan jobRef, cfg.Concurrency)

	var wg sync.WaitGroup
	for i := range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wlog := log.With(logger.Int("worker", i))
			for job := range jobs {
				work(ctx, repo, processor, job, wlog)
			}
		}()
	}

	dispatch(ctx, repo, jobs, cfg, log)
	close(jobs)
	wg.Wait()
}

type jobRef struct {
	id            string
	certificateID string
}

func dispatch(ctx context.Context, repo ports.JobRepository, jobs chan<- jobRef, cfg Config, log logger.Logger) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for {
			job, found, err := repo.ClaimNext(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("Job claim failed", logger.Error(err))
				}
				break
			}
			if !found {
				break
			}
			cfg.Metrics.JobClaimed()
			select {
			case jobs <- jobRef{id: job.ID, certificateID: job.CertificateID}:
			case <-ctx.Done():
				if err := repo.MarkFailed(ctx, job.ID, "shutdown before processing"); err != nil {
					log.Warn("Releasing claimed job failed", logger.String("job", job.ID), logger.Error(err))
				}
				return
			}
		}
	}
}

func work(ctx context.Context, repo ports.JobRepository, processor Processor, job jobRef, log logger.Logger) {
	log = log.With(logger.String("job", job.id), logger.String("certificate", job.certificateID))
	start := time.Now()
	if err := processor.Process(ctx, job.certificateID); err != nil {
		log.Error("Composition job failed", logger.Error(err))
		if err := repo.MarkFailed(ctx, job.id, err.Error()); err != nil {
			log.Warn("Marking job failed", logger.Error(err))
		}
		return
	}
	if err := repo.MarkCompleted(ctx, job.id); err != nil {
		log.Warn("Marking job completed", logger.Error(err))
		return
	}
	log.Info("Composition job completed", logger.Duration("elapsed", time.Since(start)))
}

// ProcessInline composes one certificate synchronously with the same
// processor the workers use, claiming its queued job first.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, certificateID string) error {
	jobID, err := repo.StartJobForCertificate(ctx, certificateID)
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", certificateID, ErrNotQueued, err)
	}
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, certificateID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
