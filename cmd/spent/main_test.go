package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/ledger"
)

func findCommand(t *testing.T, root *cobra.Command, path ...string) *cobra.Command {
	t.Helper()
	cmd, rest, err := root.Find(path)
	require.NoError(t, err)
	require.Empty(t, rest)
	return cmd
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	tests := [][]string{
		{"migrate"},
		{"users", "add"},
		{"users", "list"},
		{"categories", "list"},
		{"categories", "add"},
		{"expenses", "add"},
		{"expenses", "show"},
		{"expenses", "update"},
		{"expenses", "delete"},
		{"expenses", "list"},
		{"expenses", "browse"},
		{"expenses", "import"},
		{"budgets", "add"},
		{"budgets", "list"},
		{"budgets", "update"},
		{"budgets", "delete"},
		{"dashboard", "stats"},
		{"dashboard", "breakdown"},
		{"dashboard", "trend"},
		{"dashboard", "compare"},
		{"report", "show"},
		{"report", "export"},
		{"report", "auth"},
		{"serve"},
		{"version"},
	}
	for _, path := range tests {
		t.Run(fmt.Sprint(path), func(t *testing.T) {
			cmd := findCommand(t, root, path...)
			assert.Equal(t, path[len(path)-1], cmd.Name())
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"config", "log-level", "log-format", "user", "database"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "info", root.PersistentFlags().Lookup("log-level").DefValue)
	assert.Equal(t, "console", root.PersistentFlags().Lookup("log-format").DefValue)
}

func TestListFlagDefaults(t *testing.T) {
	list := findCommand(t, newRootCmd(), "expenses", "list")

	assert.Equal(t, "0", list.Flag("page").DefValue)
	assert.Equal(t, fmt.Sprint(ledger.DefaultPageSize), list.Flag("size").DefValue)
	assert.Equal(t, "date", list.Flag("sort").DefValue)
	assert.Equal(t, "desc", list.Flag("direction").DefValue)
}

func TestServeFlags(t *testing.T) {
	serve := findCommand(t, newRootCmd(), "serve")

	assert.Contains(t, serve.Flag("addr").Usage, config.DefaultServerAddr)
	assert.Equal(t, "30s", serve.Flag("request-timeout").DefValue)
	assert.Equal(t, "false", serve.Flag("tls").DefValue)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain error",
			err:  errors.New("disk full"),
			want: "disk full",
		},
		{
			name: "user error",
			err:  common.NewUserError("pick a user first", common.ErrInvalidInput),
			want: "pick a user first",
		},
		{
			name: "wrapped user error",
			err:  fmt.Errorf("failed to add expense: %w", common.NewUserError("unknown category", common.ErrNotFound)),
			want: "unknown category",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: " 42 ", want: 42},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseID(tt.raw, "expense")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
