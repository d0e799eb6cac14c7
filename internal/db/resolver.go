package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. .pgpass file (PostgreSQL standard)
//  3. Connection string with embedded password
//  4. Interactive prompt (-W)
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were
// provided. The database flag is excluded because it can override the
// database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags. These override the
// corresponding AZURE_* environment variables. The client secret is
// only accepted via AZURE_CLIENT_SECRET.
type AzureFlags struct {
	Enabled  bool   // --azure, selects the DefaultAzureCredential chain when no IDs are given
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// IsEmpty returns true if no Azure flags were provided.
func (a *AzureFlags) IsEmpty() bool {
	return a == nil || (!a.Enabled && a.TenantID == "" && a.ClientID == "")
}

// AWSFlags represents AWS RDS IAM authentication CLI flags.
type AWSFlags struct {
	UseIAM bool   // --aws-iam
	Region string // --aws-region, overrides $AWS_REGION
}

// GoogleFlags represents Google Cloud SQL IAM authentication CLI flags.
type GoogleFlags struct {
	Instance string // --google-instance (project:region:instance)
}

// EnvVars represents PostgreSQL standard environment variables plus the
// cloud provider variables pgbulk honors.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION string

	// Azure SDK standard names
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters using
// PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (-h, -p, -U, -d) - if any provided, build config from flags
//  3. Environment variables (PGHOST, PGPORT, etc.)
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. Project config (pgbulk.yaml)
//  6. Defaults (localhost:5432, prefer SSL)
//
// Cloud IAM authentication is applied afterwards: Google Cloud SQL when
// --google-instance is set, AWS IAM when --aws-iam is set, Azure Entra
// ID when --azure, Azure flags, or AZURE_* environment variables are
// present. With none of those, the auth_method entry in pgbulk.yaml
// selects the method.
//
// Returns an error if BOTH --connection and granular flags are provided;
// this prevents ambiguity and ensures clear user intent.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	azureFlags *AzureFlags,
	awsFlags *AWSFlags,
	googleFlags *GoogleFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgbulk.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if awsFlags == nil {
		awsFlags = &AWSFlags{}
	}
	if googleFlags == nil {
		googleFlags = &GoogleFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U): %w\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/mydb\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d mydb\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
			pgbulk.ErrInvalidConfig,
		)
	}

	var cfg *pgbulk.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	// Database flag overrides whatever the connection string carried.
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyCloudAuth(cfg, azureFlags, awsFlags, googleFlags, envVars, projectConfig); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveFromConnectionString parses a connection string, applying
// environment fallbacks the way libpq does.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*pgbulk.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", pgbulk.ErrInvalidConfig, err)
	}

	if cfg.SSLMode == "" && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" && envVars.PGPASSWORD != "" {
		cfg.Password = envVars.PGPASSWORD
	}

	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from granular
// flags, environment variables, and project config. Precedence for each
// parameter: CLI flag > environment variable > pgbulk.yaml > default.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgbulk.ConnectionConfig, error) {
	cfg := &pgbulk.ConnectionConfig{
		AuthMethod:       pgbulk.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	cfg.Port = flags.Port
	if cfg.Port == 0 && envVars.PGPORT != "" {
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid PGPORT %q: %w: %w", envVars.PGPORT, pgbulk.ErrInvalidConfig, err)
		}
		cfg.Port = port
	}
	if cfg.Port == 0 {
		cfg.Port = pc.Port
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username)
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")
	cfg.Password = envVars.PGPASSWORD

	return cfg, nil
}

// applyCloudAuth switches the auth method when cloud IAM parameters are
// present. Google takes precedence over AWS over Azure; only one cloud
// method can be active. When no flag or environment variable selects a
// cloud method, the auth_method entry in pgbulk.yaml is consulted as
// the lowest-precedence source.
func applyCloudAuth(cfg *pgbulk.ConnectionConfig, azure *AzureFlags, aws *AWSFlags, google *GoogleFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if google.Instance != "" {
		cfg.AuthMethod = pgbulk.AuthMethodGoogleIAM
		cfg.GoogleInstance = google.Instance
		return nil
	}

	if aws.UseIAM {
		cfg.AuthMethod = pgbulk.AuthMethodAWSIAM
		cfg.AWSRegion = firstNonEmpty(aws.Region, env.AWS_REGION, pc.AWSRegion)
		return nil
	}

	tenantID := firstNonEmpty(azure.TenantID, env.AZURE_TENANT_ID)
	clientID := firstNonEmpty(azure.ClientID, env.AZURE_CLIENT_ID)
	if azure.Enabled || tenantID != "" || clientID != "" {
		cfg.AuthMethod = pgbulk.AuthMethodAzureEntraID
		cfg.AzureTenantID = firstNonEmpty(tenantID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(clientID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		return nil
	}

	method, err := parseAuthMethod(pc.AuthMethod)
	if err != nil {
		return err
	}
	switch method {
	case pgbulk.AuthMethodGoogleIAM:
		cfg.AuthMethod = method
		cfg.GoogleInstance = pc.GoogleInstance
	case pgbulk.AuthMethodAWSIAM:
		cfg.AuthMethod = method
		cfg.AWSRegion = firstNonEmpty(env.AWS_REGION, pc.AWSRegion)
	case pgbulk.AuthMethodAzureEntraID:
		cfg.AuthMethod = method
		cfg.AzureTenantID = pc.AzureTenantID
		cfg.AzureClientID = pc.AzureClientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

// parseAuthMethod maps the auth_method value from pgbulk.yaml to an
// AuthMethod. An empty value means standard password authentication.
func parseAuthMethod(value string) (pgbulk.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "standard", "password":
		return pgbulk.AuthMethodStandard, nil
	case "aws_iam", "aws-iam":
		return pgbulk.AuthMethodAWSIAM, nil
	case "google_iam", "google-iam":
		return pgbulk.AuthMethodGoogleIAM, nil
	case "azure", "azure_entra_id", "azure-entra-id":
		return pgbulk.AuthMethodAzureEntraID, nil
	default:
		return pgbulk.AuthMethodStandard, fmt.Errorf(
			"invalid auth_method %q in %s (valid: standard, aws_iam, google_iam, azure): %w",
			value, config.ConfigFileName, pgbulk.ErrInvalidConfig,
		)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
