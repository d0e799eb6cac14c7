package db

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// keepaliveDialer returns a dialer with aggressive TCP keepalive
// probing. Bulk COPY streams leave the connection quiet for long
// stretches while the server ingests data; without probing, NAT
// gateways and idle-timeout middleboxes drop the connection
// mid-transfer.
func keepaliveDialer() *net.Dialer {
	return &net.Dialer{
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     pgbulk.KeepaliveIdle,
			Interval: pgbulk.KeepaliveInterval,
			Count:    pgbulk.KeepaliveCount,
		},
	}
}

// StandardOpener implements pgbulk.SessionOpener for standard
// username/password authentication. Each Open call establishes a fresh
// single connection; sessions are never pooled.
type StandardOpener struct {
	config *pgbulk.ConnectionConfig
}

// NewStandardOpener creates a new StandardOpener with the given configuration.
func NewStandardOpener(config *pgbulk.ConnectionConfig) *StandardOpener {
	return &StandardOpener{config: config}
}

// Open establishes a single keepalive-tuned session.
func (o *StandardOpener) Open(ctx context.Context) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(o.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	connConfig.DialFunc = keepaliveDialer().DialContext

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, o.config.Host, o.config.Port, o.config.Database)
	}

	return conn, nil
}

// NewSessionOpener is a factory function that creates the appropriate
// SessionOpener based on the ConnectionConfig's AuthMethod.
func NewSessionOpener(config *pgbulk.ConnectionConfig) (pgbulk.SessionOpener, error) {
	switch config.AuthMethod {
	case pgbulk.AuthMethodStandard:
		return NewStandardOpener(config), nil
	case pgbulk.AuthMethodAWSIAM:
		return newAWSOpener(config)
	case pgbulk.AuthMethodGoogleIAM:
		return newGoogleOpener(config)
	case pgbulk.AuthMethodAzureEntraID:
		return newAzureOpener(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgbulk.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable
// guidance. All returned errors satisfy errors.Is(err, pgbulk.ErrConnectionFailed).
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, pgbulk.ErrConnectionFailed, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host %q

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, pgbulk.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database %q

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - User does not have access to the database

Original error: %w`, pgbulk.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database %q does not exist

Create it first; pgbulk loads into existing tables only.

Original error: %w`, pgbulk.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets

Original error: %w`, pgbulk.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, pgbulk.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`%w: too many connections to database %q

Each worker opens one session per chunk; lower --workers or raise
max_connections in postgresql.conf.

Original error: %w`, pgbulk.ErrConnectionFailed, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", pgbulk.ErrConnectionFailed, err)
	}
}

// newAWSOpener creates a token-based opener with the AWS IAM token provider.
func newAWSOpener(config *pgbulk.ConnectionConfig) (pgbulk.SessionOpener, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenOpener(config, tokenProvider, "AWS IAM"), nil
}

// newGoogleOpener creates a GoogleCloudSQLOpener for Cloud SQL IAM authentication.
func newGoogleOpener(config *pgbulk.ConnectionConfig) (pgbulk.SessionOpener, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance)")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U)")
	}

	return NewGoogleCloudSQLOpener(config, config.GoogleInstance), nil
}

// newAzureOpener creates a token-based opener with the Azure Entra ID
// token provider. Explicit credentials select Service Principal auth;
// otherwise the DefaultAzureCredential chain is used.
func newAzureOpener(config *pgbulk.ConnectionConfig) (pgbulk.SessionOpener, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenOpener(config, tokenProvider, "Azure"), nil
}
