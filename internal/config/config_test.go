package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pooldesk")
	t.Setenv("AUTH0_DOMAIN", "pooldesk.example.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.pooldesk.test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.LedgerMaxRetries)
	assert.Equal(t, "CASH BILL MEETING", cfg.CashBill.Title)
	assert.Equal(t, "Asia/Kolkata", cfg.CashBill.Location.String())
	assert.Equal(t, 20, cfg.CashBill.RatePerMinute)
	assert.Equal(t, 5, cfg.CashBill.Burst)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.UsesSQLite())
}

func TestLoad_SQLite(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "sqlite:/tmp/pooldesk.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UsesSQLite())
	assert.Equal(t, "/tmp/pooldesk.db", cfg.SQLitePath())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad retries", "LEDGER_MAX_RETRIES", "many"},
		{"zero retries", "LEDGER_MAX_RETRIES", "0"},
		{"bad zone", "CASH_BILL_TZ", "Mars/Olympus"},
		{"bad burst", "EXPORT_BURST", "-1"},
		{"empty sqlite path", "DATABASE_URL", "sqlite:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingAuth(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH0_DOMAIN", "")

	_, err := Load()
	assert.EqualError(t, err, "AUTH0_DOMAIN is required")
}
