package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// fakeLoader records invocations and fails the chunks it is told to fail.
type fakeLoader struct {
	mu          sync.Mutex
	loaded      []int
	failIndex   map[int]bool
	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeLoader) Load(_ context.Context, c pgbulk.Chunk, _ pgbulk.Target) error {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if cur <= prev || f.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.loaded = append(f.loaded, c.Index)
	f.mu.Unlock()

	if f.failIndex[c.Index] {
		return fmt.Errorf("chunk %d: copy stream: %w: boom", c.Index, pgbulk.ErrLoadFailed)
	}
	return nil
}

func testTable(rows int) *pgbulk.Table {
	ids := make([]any, rows)
	for i := range ids {
		ids[i] = i
	}
	table := &pgbulk.Table{}
	table.AddColumn("id", ids)
	return table
}

func testPublisher(loader chunkLoader, opts ...Option) *Publisher {
	p := &Publisher{
		loader:    loader,
		logger:    logging.NewNullLogger(),
		workers:   pgbulk.DefaultWorkers,
		chunkSize: pgbulk.DefaultChunkSize,
		schema:    pgbulk.DefaultSchema,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func TestPublish_AllChunksLoaded(t *testing.T) {
	loader := &fakeLoader{}
	p := testPublisher(loader, WithChunkSize(10), WithWorkers(3))

	err := p.Publish(context.Background(), testTable(55), pgbulk.Target{Schema: "s", Table: "t"})
	require.NoError(t, err)

	assert.Len(t, loader.loaded, 6)
	seen := make(map[int]bool)
	for _, idx := range loader.loaded {
		seen[idx] = true
	}
	for i := 0; i < 6; i++ {
		assert.True(t, seen[i], "chunk %d not loaded", i)
	}
}

func TestPublish_FailFastAggregation(t *testing.T) {
	// Chunk 2 fails; all 5 chunks are still attempted (no skipping,
	// in-flight work drains) and the publish surfaces the failure.
	loader := &fakeLoader{failIndex: map[int]bool{2: true}}
	p := testPublisher(loader, WithChunkSize(10), WithWorkers(2))

	err := p.Publish(context.Background(), testTable(50), pgbulk.Target{Schema: "s", Table: "t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgbulk.ErrPublishFailed))
	assert.True(t, errors.Is(err, pgbulk.ErrLoadFailed))
	assert.Contains(t, err.Error(), "chunk 2")
	assert.Len(t, loader.loaded, 5)
}

func TestPublish_FirstFailureWins(t *testing.T) {
	loader := &fakeLoader{failIndex: map[int]bool{1: true, 3: true}}
	p := testPublisher(loader, WithChunkSize(10), WithWorkers(1))

	err := p.Publish(context.Background(), testTable(40), pgbulk.Target{Schema: "s", Table: "t"})
	require.Error(t, err)
	// With one worker, completion order equals submission order, so the
	// first observed failure is chunk 1.
	assert.Contains(t, err.Error(), "chunk 1")
	assert.Len(t, loader.loaded, 4)
}

func TestPublish_WorkerBound(t *testing.T) {
	loader := &fakeLoader{delay: 10 * time.Millisecond}
	p := testPublisher(loader, WithChunkSize(1), WithWorkers(3))

	err := p.Publish(context.Background(), testTable(12), pgbulk.Target{Schema: "s", Table: "t"})
	require.NoError(t, err)
	assert.LessOrEqual(t, loader.maxInFlight.Load(), int32(3))
}

func TestPublish_Progress(t *testing.T) {
	loader := &fakeLoader{}
	var updates [][2]int
	p := testPublisher(loader,
		WithChunkSize(10),
		WithWorkers(4),
		WithProgress(func(done, total int) {
			updates = append(updates, [2]int{done, total})
		}),
	)

	err := p.Publish(context.Background(), testTable(30), pgbulk.Target{Schema: "s", Table: "t"})
	require.NoError(t, err)

	require.Len(t, updates, 3)
	for i, u := range updates {
		assert.Equal(t, i+1, u[0])
		assert.Equal(t, 3, u[1])
	}
}

func TestPublish_ChunkingFailureAbortsBeforeLoading(t *testing.T) {
	loader := &fakeLoader{}
	p := testPublisher(loader)

	err := p.Publish(context.Background(), &pgbulk.Table{}, pgbulk.Target{Schema: "s", Table: "t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgbulk.ErrChunking))
	assert.Empty(t, loader.loaded)
}

func TestPublish_InvalidTarget(t *testing.T) {
	loader := &fakeLoader{}
	p := testPublisher(loader)

	err := p.Publish(context.Background(), testTable(5), pgbulk.Target{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgbulk.ErrInvalidConfig))
	assert.Empty(t, loader.loaded)
}

func TestPublish_EmptyTableRows(t *testing.T) {
	loader := &fakeLoader{}
	p := testPublisher(loader)

	table := &pgbulk.Table{}
	table.AddColumn("id", []any{})

	err := p.Publish(context.Background(), table, pgbulk.Target{Schema: "s", Table: "t"})
	require.NoError(t, err)
	assert.Empty(t, loader.loaded)
}

func TestBulkPublish_UsesDefaultSchema(t *testing.T) {
	var gotTarget pgbulk.Target
	loader := &recordingLoader{onLoad: func(target pgbulk.Target) { gotTarget = target }}
	p := testPublisher(loader, WithDefaultSchema("staging"), WithChunkSize(10))

	err := p.BulkPublish(context.Background(), testTable(5), "events")
	require.NoError(t, err)
	assert.Equal(t, pgbulk.Target{Schema: "staging", Table: "events"}, gotTarget)
}

type recordingLoader struct {
	onLoad func(pgbulk.Target)
}

func (r *recordingLoader) Load(_ context.Context, _ pgbulk.Chunk, target pgbulk.Target) error {
	r.onLoad(target)
	return nil
}

func TestNewPublisher_Defaults(t *testing.T) {
	p := NewPublisher(nilOpener{}, logging.NewNullLogger())
	assert.Equal(t, pgbulk.DefaultWorkers, p.workers)
	assert.Equal(t, pgbulk.DefaultChunkSize, p.chunkSize)
	assert.Equal(t, pgbulk.DefaultSchema, p.schema)
}

type nilOpener struct{}

func (nilOpener) Open(context.Context) (*pgx.Conn, error) {
	return nil, errors.New("not implemented")
}
