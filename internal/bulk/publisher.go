package bulk

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vvka-141/pgbulk/internal/chunk"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// chunkLoader abstracts the per-chunk load operation for testability.
type chunkLoader interface {
	Load(ctx context.Context, c pgbulk.Chunk, target pgbulk.Target) error
}

// Publisher implements pgbulk.Publisher: it chunks a table, fans the
// chunks out to a bounded worker pool, waits for every chunk to reach
// a terminal state, and reports the first observed failure.
type Publisher struct {
	loader     chunkLoader
	logger     pgbulk.Logger
	workers    int
	chunkSize  int
	schema     string
	onProgress pgbulk.ProgressFunc
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithWorkers sets the worker pool size. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithChunkSize sets the number of rows per chunk. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithDefaultSchema sets the schema used by BulkPublish.
func WithDefaultSchema(schema string) Option {
	return func(p *Publisher) {
		if schema != "" {
			p.schema = schema
		}
	}
}

// WithProgress registers a completion callback. The publisher
// serializes invocations; fn itself does not need to be goroutine-safe.
func WithProgress(fn pgbulk.ProgressFunc) Option {
	return func(p *Publisher) {
		p.onProgress = fn
	}
}

// NewPublisher creates a Publisher loading through the given session
// opener.
//
// Panics if opener or logger is nil (programmer error, fail fast).
func NewPublisher(opener pgbulk.SessionOpener, logger pgbulk.Logger, opts ...Option) *Publisher {
	if logger == nil {
		panic("logger cannot be nil")
	}

	p := &Publisher{
		loader:    NewLoader(opener, logger),
		logger:    logger,
		workers:   pgbulk.DefaultWorkers,
		chunkSize: pgbulk.DefaultChunkSize,
		schema:    pgbulk.DefaultSchema,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish loads table into target. All chunks are submitted to the
// pool up front; the bounded worker count is the only throttle. On
// failure, in-flight and already-scheduled chunks drain (no
// cancellation), and the first observed failure is returned once all
// outstanding work finishes.
func (p *Publisher) Publish(ctx context.Context, table *pgbulk.Table, target pgbulk.Target) error {
	if err := target.Validate(); err != nil {
		return err
	}

	chunks, err := chunk.Split(table, p.chunkSize)
	if err != nil {
		return err
	}

	runID := uuid.New()
	total := len(chunks)
	p.logger.Info("Publishing %s: %d rows in %d chunks (run %s)", target, table.RowCount(), total, runID)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	jobs := make(chan pgbulk.Chunk)
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				loadErr := p.loader.Load(ctx, c, target)

				mu.Lock()
				done++
				if loadErr != nil && firstErr == nil {
					firstErr = loadErr
				}
				if p.onProgress != nil {
					p.onProgress(done, total)
				}
				mu.Unlock()

				if loadErr != nil {
					p.logger.Error("Chunk %d failed: %v", c.Index, loadErr)
				} else {
					p.logger.Verbose("Chunk %d committed (%d rows)", c.Index, c.RowCount())
				}
			}
		}()
	}

	for _, c := range chunks {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("publish %s (run %s): %w: %w", target, runID, pgbulk.ErrPublishFailed, firstErr)
	}

	p.logger.Info("Finished publishing %s (run %s)", target, runID)
	return nil
}

// BulkPublish loads table into tableName under the publisher's default
// schema.
func (p *Publisher) BulkPublish(ctx context.Context, table *pgbulk.Table, tableName string) error {
	return p.Publish(ctx, table, pgbulk.Target{Schema: p.schema, Table: tableName})
}
