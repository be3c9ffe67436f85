package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/models/manifest"
	"github.com/rm-hull/alphablend/internal/pipeline"
)

// Processor runs the jobs of a manifest on a fixed pool of workers. Relative inputs,
// overlays and outputs are resolved against rootDir; http(s) references go through fetcher.
type Processor struct {
	startTime time.Time
	endTime   time.Time
	rootDir   string
	poolSize  int
	jobs      chan manifest.Job
	results   chan error
	fetcher   codec.Fetcher
	queue     []manifest.Job
}

func NewProcessor(m *manifest.Manifest, rootDir string, poolSize int, fetcher codec.Fetcher) (*Processor, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	if len(m.Jobs) == 0 {
		return nil, errors.New("no jobs to process")
	}
	log.Printf("Manifest contains %d jobs", len(m.Jobs))

	return &Processor{
		startTime: time.Now(),
		rootDir:   rootDir,
		poolSize:  poolSize,
		jobs:      make(chan manifest.Job),
		results:   make(chan error),
		fetcher:   fetcher,
		queue:     m.Jobs,
	}, nil
}

// DispatchJobs sends every job to the workers, then closes the jobs channel.
func (p *Processor) DispatchJobs() {
	go func() {
		for _, job := range p.queue {
			p.jobs <- job
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers(ctx context.Context) {
	log.Printf("Starting batch processing with pool size: %d", p.poolSize)

	for i := range p.poolSize {
		go p.worker(ctx, i)
	}
}

func (p *Processor) worker(ctx context.Context, i int) {
	log.Printf("Worker %d started", i)
	for job := range p.jobs {
		if err := p.processJob(ctx, job); err != nil {
			p.results <- fmt.Errorf("job %s: %w", job.Id, err)
		} else {
			p.results <- nil
		}
	}
	log.Printf("Worker %d finished", i)
}

func (p *Processor) processJob(ctx context.Context, job manifest.Job) error {
	filename := p.resolve(job.Output)

	// if the file already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create path: %w", err)
	}

	b := pipeline.New(codec.Open(p.resolve(job.Input), p.fetcher))
	if job.Resize != nil {
		b.Resize(job.Resize.Width, job.Resize.Height, pipeline.WithGaussianBlur(job.Resize.Blur()))
	}
	if job.Kernel != "" {
		b.InterpolateWith(job.Kernel)
	}
	for _, overlay := range job.Overlays {
		b.OverlayWith(codec.Open(p.resolve(overlay), p.fetcher))
	}

	info, err := b.ToFile(ctx, filename)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s (%dx%d, %d channels)", filename, info.Width, info.Height, info.Channels)
	return nil
}

// Wait blocks until every dispatched job has reported and returns the failures.
func (p *Processor) Wait() []error {
	log.Printf("Waiting for %d jobs to be processed", len(p.queue))

	errs := make([]error, 0, 10)
	for range p.queue {
		err := <-p.results
		if err != nil {
			errs = append(errs, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Printf("All jobs processed in %s (errors=%d)", elapsed, len(errs))
	return errs
}

func (p *Processor) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(p.rootDir, ref)
}

// RunBatch loads the manifest and processes all of its jobs.
func RunBatch(ctx context.Context, manifestPath, rootDir string, poolSize int, fetcher codec.Fetcher) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	p, err := NewProcessor(m, rootDir, poolSize, fetcher)
	if err != nil {
		return err
	}
	p.StartWorkers(ctx)
	p.DispatchJobs()
	return errors.Join(p.Wait()...)
}
