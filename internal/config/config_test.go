package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/sheets"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPENT_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/spent.db", filepath.Join(home, "spent.db")},
		{"$SPENT_TEST_DIR/spent.db", "/srv/data/spent.db"},
		{"/abs/spent.db", "/abs/spent.db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	resetViper(t)

	t.Setenv("XDG_DATA_HOME", "/xdg")
	assert.Equal(t, "/xdg/spent/spent.db", DatabasePath())

	viper.Set("database.path", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DatabasePath())
}

func TestServerAddr(t *testing.T) {
	resetViper(t)
	assert.Equal(t, DefaultServerAddr, ServerAddr())

	viper.Set("server.addr", "127.0.0.1:9000")
	assert.Equal(t, "127.0.0.1:9000", ServerAddr())
}

func TestCertDir(t *testing.T) {
	resetViper(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "spent", "certs"), CertDir())

	viper.Set("server.cert_dir", "/etc/spent/tls")
	assert.Equal(t, "/etc/spent/tls", CertDir())
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}

	t.Run("from viper", func(t *testing.T) {
		resetViper(t)
		viper.Set("sheets.service_account_path", "/keys/sa.json")
		viper.Set("sheets.spreadsheet_name", "Household")
		viper.Set("sheets.batch_size", 50)
		viper.Set("sheets.retry_delay", "2s")
		viper.Set("sheets.formatting", false)

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "Household", cfg.SpreadsheetName)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, 2*time.Second, cfg.RetryDelay)
		assert.False(t, cfg.EnableFormatting)
		assert.Equal(t, sheets.DefaultConfig().RetryAttempts, cfg.RetryAttempts)
	})

	t.Run("falls back to environment", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		resetViper(t)
		_, err := LoadSheetsConfig()
		require.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("two credential kinds", func(t *testing.T) {
		resetViper(t)
		viper.Set("sheets.service_account_path", "/keys/sa.json")
		viper.Set("sheets.client_id", "id")
		viper.Set("sheets.client_secret", "secret")
		viper.Set("sheets.refresh_token", "refresh")

		_, err := LoadSheetsConfig()
		require.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}
