package pgbulk

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Publish completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitChunkingError   = 12 // Input table could not be chunked
	ExitLoadFailed      = 13 // One or more chunk loads failed
)

const (
	// DefaultChunkSize is the number of rows per chunk. Large enough to
	// amortize the per-chunk connection and transaction overhead, small
	// enough that a failed chunk does not discard hours of transfer.
	DefaultChunkSize = 50000

	// DefaultWorkers is the number of concurrent chunk loads.
	DefaultWorkers = 4

	// DefaultSchema is the target schema used by BulkPublish when the
	// caller supplies only a table name.
	DefaultSchema = "public"

	// TCP keepalive tuning for bulk-transfer sessions. Multi-gigabyte
	// COPY streams can keep a connection quiet for long stretches;
	// aggressive probing prevents idle-timeout disconnects by NAT
	// gateways and load balancers mid-transfer.
	KeepaliveIdle     = 5 * time.Second
	KeepaliveInterval = 2 * time.Second
	KeepaliveCount    = 2
)
