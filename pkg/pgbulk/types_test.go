package pgbulk_test

import (
	"errors"
	"testing"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func TestTable_RowCount(t *testing.T) {
	var empty pgbulk.Table
	if got := empty.RowCount(); got != 0 {
		t.Errorf("RowCount() on empty table = %d, want 0", got)
	}

	table := &pgbulk.Table{}
	table.AddColumn("id", []any{1, 2, 3})
	table.AddColumn("name", []any{"alice", "bob", nil})

	if got := table.RowCount(); got != 3 {
		t.Errorf("RowCount() = %d, want 3", got)
	}
}

func TestTable_AddColumn_PreservesOrder(t *testing.T) {
	table := &pgbulk.Table{}
	names := []string{"zulu", "alpha", "order", "mike"}
	for _, n := range names {
		table.AddColumn(n, []any{1})
	}

	for i, col := range table.Columns {
		if col.Name != names[i] {
			t.Errorf("Columns[%d].Name = %q, want %q", i, col.Name, names[i])
		}
	}
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    pgbulk.Target
		wantError bool
	}{
		{"valid", pgbulk.Target{Schema: "sales", Table: "orders"}, false},
		{"missing schema", pgbulk.Target{Table: "orders"}, true},
		{"missing table", pgbulk.Target{Schema: "sales"}, true},
		{"missing both", pgbulk.Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, pgbulk.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTarget_String(t *testing.T) {
	target := pgbulk.Target{Schema: "sales", Table: "orders"}
	if got := target.String(); got != "sales.orders" {
		t.Errorf("String() = %q, want %q", got, "sales.orders")
	}
}

func TestAuthMethod_String(t *testing.T) {
	tests := []struct {
		method pgbulk.AuthMethod
		want   string
	}{
		{pgbulk.AuthMethodStandard, "Standard"},
		{pgbulk.AuthMethodAWSIAM, "AWS IAM"},
		{pgbulk.AuthMethodGoogleIAM, "Google IAM"},
		{pgbulk.AuthMethodAzureEntraID, "Azure Entra ID"},
		{pgbulk.AuthMethod(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("AuthMethod(%d).String() = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestAuthMethod_IsValid(t *testing.T) {
	if !pgbulk.AuthMethodStandard.IsValid() {
		t.Error("AuthMethodStandard should be valid")
	}
	if !pgbulk.AuthMethodAzureEntraID.IsValid() {
		t.Error("AuthMethodAzureEntraID should be valid")
	}
	if pgbulk.AuthMethod(99).IsValid() {
		t.Error("AuthMethod(99) should be invalid")
	}
	if pgbulk.AuthMethod(-1).IsValid() {
		t.Error("AuthMethod(-1) should be invalid")
	}
}
