package pgbulk

import "context"

// Publisher drives a complete bulk-load operation: chunk the table,
// fan the chunks out to a bounded worker pool, wait for every chunk to
// reach a terminal state, and surface the first failure.
type Publisher interface {
	// Publish loads table into target. It blocks until every chunk has
	// either committed or failed, then returns nil on full success or
	// an error wrapping ErrPublishFailed and the first observed cause.
	Publish(ctx context.Context, table *Table, target Target) error

	// BulkPublish is a convenience variant targeting the publisher's
	// default schema.
	BulkPublish(ctx context.Context, table *Table, tableName string) error
}

// ProgressFunc receives completion updates as chunk loads finish.
// done counts terminal chunks (committed or failed) out of total;
// updates arrive in completion order, which is not submission order.
// Invocations are serialized by the publisher.
type ProgressFunc func(done, total int)
