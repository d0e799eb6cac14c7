// Package pgbulk defines the public types and interfaces for the pgbulk
// chunked parallel bulk loader.
//
// # Overview
//
// pgbulk loads an in-memory columnar table into a PostgreSQL table using
// the COPY FROM STDIN streaming protocol. The table is split into
// fixed-size row chunks, each chunk is serialized into a pipe-delimited
// CSV payload and streamed over its own connection inside its own
// transaction, and chunks are driven concurrently by a bounded worker
// pool with fail-fast error aggregation.
//
// # Usage
//
//	opener, err := db.NewSessionOpener(connConfig)
//	if err != nil { ... }
//
//	publisher := bulk.NewPublisher(opener, logger,
//	    bulk.WithWorkers(4),
//	    bulk.WithChunkSize(50000),
//	)
//
//	err = publisher.Publish(ctx, table, pgbulk.Target{Schema: "sales", Table: "orders"})
//
// Error classification uses sentinel errors; callers can distinguish
// failure kinds with errors.Is:
//
//	if errors.Is(err, pgbulk.ErrConnectionFailed) { ... }
//
// # Partial-failure semantics
//
// Each chunk commits or rolls back independently. When any chunk fails,
// the publish call fails with ErrPublishFailed wrapping the first
// observed cause, but chunks that already committed stay committed.
// There is no cross-chunk transaction and no automatic retry.
package pgbulk
