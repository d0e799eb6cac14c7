package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func TestKeepaliveDialer(t *testing.T) {
	d := keepaliveDialer()

	assert.True(t, d.KeepAliveConfig.Enable)
	assert.Equal(t, pgbulk.KeepaliveIdle, d.KeepAliveConfig.Idle)
	assert.Equal(t, pgbulk.KeepaliveInterval, d.KeepAliveConfig.Interval)
	assert.Equal(t, pgbulk.KeepaliveCount, d.KeepAliveConfig.Count)
}

func TestNewSessionOpener_Standard(t *testing.T) {
	opener, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Host:       "localhost",
		Port:       5432,
		Database:   "db",
		AuthMethod: pgbulk.AuthMethodStandard,
	})
	require.NoError(t, err)
	assert.IsType(t, &StandardOpener{}, opener)
}

func TestNewSessionOpener_AWSIAM(t *testing.T) {
	opener, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Host:       "mydb.cluster.eu-west-1.rds.amazonaws.com",
		Port:       5432,
		Database:   "db",
		Username:   "iamuser",
		AWSRegion:  "eu-west-1",
		AuthMethod: pgbulk.AuthMethodAWSIAM,
	})
	require.NoError(t, err)
	assert.IsType(t, &TokenOpener{}, opener)
}

func TestNewSessionOpener_AWSIAMMissingRegion(t *testing.T) {
	_, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Host:       "mydb.rds.amazonaws.com",
		Port:       5432,
		Username:   "iamuser",
		AuthMethod: pgbulk.AuthMethodAWSIAM,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestNewSessionOpener_Google(t *testing.T) {
	opener, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Database:       "db",
		Username:       "sa@project.iam",
		GoogleInstance: "project:region:instance",
		AuthMethod:     pgbulk.AuthMethodGoogleIAM,
	})
	require.NoError(t, err)
	assert.IsType(t, &GoogleCloudSQLOpener{}, opener)
}

func TestNewSessionOpener_GoogleMissingInstance(t *testing.T) {
	_, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Database:   "db",
		Username:   "sa@project.iam",
		AuthMethod: pgbulk.AuthMethodGoogleIAM,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google-instance")
}

func TestNewSessionOpener_AzureServicePrincipal(t *testing.T) {
	opener, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		Host:              "myserver.postgres.database.azure.com",
		Port:              5432,
		Database:          "db",
		Username:          "entra-user",
		AzureTenantID:     "00000000-0000-0000-0000-000000000000",
		AzureClientID:     "11111111-1111-1111-1111-111111111111",
		AzureClientSecret: "secret",
		AuthMethod:        pgbulk.AuthMethodAzureEntraID,
	})
	require.NoError(t, err)
	assert.IsType(t, &TokenOpener{}, opener)
}

func TestNewSessionOpener_Unsupported(t *testing.T) {
	_, err := NewSessionOpener(&pgbulk.ConnectionConfig{
		AuthMethod: pgbulk.AuthMethod(99),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgbulk.ErrUnsupportedAuthMethod))
}

func TestWrapConnectionError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		rawErr   error
		contains string
	}{
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "pg_isready"},
		{"no such host", errors.New("dial tcp: lookup badhost: no such host"), "cannot resolve host"},
		{"bad password", errors.New("failed SASL auth: password authentication failed for user \"u\""), "PGPASSWORD"},
		{"missing database", errors.New("database \"nope\" does not exist"), "does not exist"},
		{"timeout", errors.New("dial tcp 10.0.0.1:5432: i/o timeout"), "timed out"},
		{"tls", errors.New("tls error: server refused TLS connection"), "SSL/TLS"},
		{"too many connections", errors.New("FATAL: sorry, too many clients already, too many connections"), "--workers"},
		{"other", errors.New("something unexpected"), "failed to connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapConnectionError(tt.rawErr, "localhost", 5432, "mydb")
			assert.True(t, errors.Is(err, pgbulk.ErrConnectionFailed), "must wrap ErrConnectionFailed")
			assert.True(t, errors.Is(err, tt.rawErr), "must preserve the cause")
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

type fixedTokenProvider struct {
	token     string
	expiresOn time.Time
	calls     int
	err       error
}

func (p *fixedTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	p.calls++
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	return p.token, p.expiresOn, nil
}

func (p *fixedTokenProvider) String() string { return "fixed" }

func TestTokenOpener_CachesTokenAcrossSessions(t *testing.T) {
	provider := &fixedTokenProvider{
		token:     "tok-1",
		expiresOn: time.Now().Add(time.Hour),
	}
	opener := NewTokenOpener(&pgbulk.ConnectionConfig{}, provider, "test")

	for range 3 {
		token, err := opener.currentToken(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	}
	assert.Equal(t, 1, provider.calls)
}

func TestTokenOpener_RefreshesNearExpiry(t *testing.T) {
	provider := &fixedTokenProvider{
		token:     "tok-1",
		expiresOn: time.Now().Add(30 * time.Second),
	}
	opener := NewTokenOpener(&pgbulk.ConnectionConfig{}, provider, "test")

	_, err := opener.currentToken(t.Context())
	require.NoError(t, err)
	_, err = opener.currentToken(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls, "token inside refresh margin must be re-acquired")
}

func TestTokenOpener_PropagatesProviderError(t *testing.T) {
	provider := &fixedTokenProvider{err: fmt.Errorf("identity provider down")}
	opener := NewTokenOpener(&pgbulk.ConnectionConfig{}, provider, "test")

	_, err := opener.currentToken(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity provider down")
}
