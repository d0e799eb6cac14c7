package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// GoogleCloudSQLOpener implements pgbulk.SessionOpener for Google Cloud
// SQL using IAM database authentication via the Cloud SQL Go Connector.
//
// The Cloud SQL dialer is created once and shared by all sessions the
// opener produces; it handles authentication, TLS, and transport-level
// keepalive. The opener implements io.Closer; callers must Close() it
// after the publish finishes to release dialer resources.
type GoogleCloudSQLOpener struct {
	config   *pgbulk.ConnectionConfig
	instance string

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLOpener creates an opener for Google Cloud SQL IAM
// authentication. instance is the instance connection name in format
// project:region:instance.
func NewGoogleCloudSQLOpener(config *pgbulk.ConnectionConfig, instance string) *GoogleCloudSQLOpener {
	return &GoogleCloudSQLOpener{
		config:   config,
		instance: instance,
	}
}

// Open establishes a single session through the shared Cloud SQL dialer.
func (o *GoogleCloudSQLOpener) Open(ctx context.Context) (*pgx.Conn, error) {
	dialer, err := o.getDialer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", pgbulk.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable",
		o.instance,
		o.config.Username,
		o.config.Database,
	)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, o.instance)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, o.instance, o.config.Port, o.config.Database)
	}

	return conn, nil
}

func (o *GoogleCloudSQLOpener) getDialer(ctx context.Context) (*cloudsqlconn.Dialer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.dialer == nil {
		dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, err
		}
		o.dialer = dialer
	}
	return o.dialer, nil
}

// Close releases the Cloud SQL dialer resources.
// Must be called after all sessions produced by Open() are closed.
func (o *GoogleCloudSQLOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.dialer != nil {
		o.dialer.Close()
		o.dialer = nil
	}
	return nil
}
