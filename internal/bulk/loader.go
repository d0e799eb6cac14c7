package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Loader executes one bulk-load operation per chunk: serialize, open a
// session, stream the payload through COPY, and commit or roll back.
type Loader struct {
	opener pgbulk.SessionOpener
	logger pgbulk.Logger
}

// NewLoader creates a Loader.
//
// Panics if a dependency is nil. This is intentional fail-fast behavior
// to prevent cryptic nil pointer dereferences later.
func NewLoader(opener pgbulk.SessionOpener, logger pgbulk.Logger) *Loader {
	if opener == nil {
		panic("opener cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{opener: opener, logger: logger}
}

// Load streams one chunk into target inside its own session and
// transaction. Exactly one commit or one rollback happens per call,
// and the session is closed on every exit path.
func (l *Loader) Load(ctx context.Context, c pgbulk.Chunk, target pgbulk.Target) error {
	payload, err := Serialize(c)
	if err != nil {
		return err
	}

	conn, err := l.opener.Open(ctx)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", c.Index, err)
	}
	defer func() {
		if closeErr := conn.Close(ctx); closeErr != nil {
			l.logger.Verbose("chunk %d: closing session: %v", c.Index, closeErr)
		}
	}()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chunk %d: begin transaction: %w: %w", c.Index, pgbulk.ErrLoadFailed, err)
	}

	stmt := CopyStatement(target, ColumnList(c))
	l.logger.Verbose("chunk %d: streaming %d rows to %s", c.Index, c.RowCount(), target)

	if _, err := tx.Conn().PgConn().CopyFrom(ctx, strings.NewReader(payload), stmt); err != nil {
		l.rollback(ctx, tx.Rollback, c.Index)
		return fmt.Errorf("chunk %d: copy stream: %w: %w", c.Index, pgbulk.ErrLoadFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		l.rollback(ctx, tx.Rollback, c.Index)
		return fmt.Errorf("chunk %d: commit: %w: %w", c.Index, pgbulk.ErrLoadFailed, err)
	}

	return nil
}

// rollback attempts a rollback and logs a failed attempt. A rollback
// after a failed commit commonly reports the transaction as already
// closed; that is harmless and only surfaced in verbose mode.
func (l *Loader) rollback(ctx context.Context, fn func(context.Context) error, index int) {
	if err := fn(ctx); err != nil {
		l.logger.Verbose("chunk %d: rollback: %v", index, err)
	}
}
