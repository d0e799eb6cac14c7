package pgbulk

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SessionOpener opens a single database session. Different
// implementations handle various authentication methods (standard
// credentials, cloud IAM tokens, Cloud SQL connector).
//
// Each chunk load opens its own session and closes it when the load
// finishes; sessions are never shared or pooled across chunks. This
// trades connection-setup overhead for isolation: one chunk's rollback
// cannot disturb another chunk's transaction.
type SessionOpener interface {
	// Open establishes a new session. The caller owns the returned
	// connection and must close it on every exit path.
	Open(ctx context.Context) (*pgx.Conn, error)
}
