package pgbulk

import (
	"errors"
	"fmt"
	"time"
)

// Column is one named, ordered sequence of scalar values.
// Values may be strings, numbers, times, or nil for missing data.
type Column struct {
	Name   string
	Values []any
}

// Table is an in-memory columnar dataset: an ordered list of equally
// long columns. The loader never mutates a Table; it is owned by the
// caller and outlives the publish call.
type Table struct {
	Columns []Column
}

// AddColumn appends a column, preserving insertion order.
func (t *Table) AddColumn(name string, values []any) {
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
}

// RowCount returns the number of rows, determined from the first column.
// A table with no columns has zero rows.
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Chunk is a contiguous row-range slice of a Table with an identical
// column set. Chunks are produced once, loaded by exactly one worker,
// and discarded. Index is the chunk's position in submission order and
// is used for error reporting.
type Chunk struct {
	Index   int
	Columns []Column
}

// RowCount returns the number of rows in the chunk.
func (c *Chunk) RowCount() int {
	if len(c.Columns) == 0 {
		return 0
	}
	return len(c.Columns[0].Values)
}

// Target identifies the destination table for a bulk load.
// Schema and Table are interpolated into the COPY statement verbatim;
// the caller is responsible for supplying safe identifiers.
type Target struct {
	Schema string
	Table  string
}

func (t Target) String() string {
	return t.Schema + "." + t.Table
}

// Validate checks that both parts of the target are present.
func (t Target) Validate() error {
	var errs []error

	if t.Schema == "" {
		errs = append(errs, fmt.Errorf("target schema is required: %w", ErrInvalidConfig))
	}
	if t.Table == "" {
		errs = append(errs, fmt.Errorf("target table is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL IAM (used when AuthMethod is AuthMethodGoogleIAM)
	// Format: project:region:instance
	GoogleInstance string

	// Azure Entra ID authentication (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
