package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// tokenRefreshMargin controls how close to expiry a cached token may be
// before a fresh one is acquired. Chunk loads open many short-lived
// sessions back to back, so tokens are cached across Open calls instead
// of hitting the identity provider once per chunk.
const tokenRefreshMargin = 2 * time.Minute

// TokenOpener implements pgbulk.SessionOpener for cloud providers that
// authenticate via short-lived tokens (AWS IAM, Azure Entra ID). The
// token is used as the PostgreSQL password.
type TokenOpener struct {
	config        *pgbulk.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

// NewTokenOpener creates an opener that uses a TokenProvider for
// authentication. providerName is used in error messages (e.g., "AWS IAM").
func NewTokenOpener(config *pgbulk.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenOpener {
	return &TokenOpener{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
	}
}

// Open establishes a single session authenticated with a provider token.
func (o *TokenOpener) Open(ctx context.Context) (*pgx.Conn, error) {
	token, err := o.currentToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", o.providerName, pgbulk.ErrConnectionFailed, err)
	}

	configWithToken := *o.config
	configWithToken.Password = token

	connConfig, err := pgx.ParseConfig(BuildConnectionString(&configWithToken))
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

// currentToken returns the cached token, refreshing it when missing or
// close to expiry. Safe for concurrent use by multiple chunk workers.
func (o *TokenOpener) currentToken(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token != "" && time.Until(o.expiresOn) > tokenRefreshMargin {
		return o.token, nil
	}

	token, expiresOn, err := o.tokenProvider.GetToken(ctx)
	if err != nil {
		return "", err
	}

	o.token = token
	o.expiresOn = expiresOn
	return token, nil
}
