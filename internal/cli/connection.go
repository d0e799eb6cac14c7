package cli

import (
	"os"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// connectionStringFromEnv returns the first non-empty connection string from
// PGBULK_CONNECTION_STRING or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("PGBULK_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// resolveConnection consolidates connection resolution for the load
// command. It handles the connection string flag, granular flags, cloud
// provider flags, and environment variables.
func resolveConnection(
	connStringFlag string,
	granularFlags *db.GranularConnFlags,
	azureFlags *db.AzureFlags,
	awsFlags *db.AWSFlags,
	googleFlags *db.GoogleFlags,
	projectConfig *config.ProjectConfig,
) (*pgbulk.ConnectionConfig, error) {
	connString := connStringFlag
	if connString == "" && granularFlags.IsEmpty() {
		// Environment-provided connection strings yield to explicit
		// granular flags instead of conflicting with them.
		connString = connectionStringFromEnv()
	}

	envVars := db.LoadFromEnvironment()

	return db.ResolveConnectionParams(
		connString,
		granularFlags,
		azureFlags,
		awsFlags,
		googleFlags,
		envVars,
		projectConfig,
	)
}
