package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/storage"
)

// app bundles what every command needs once the database is open.
type app struct {
	store service.Storage
	clock common.Clock
}

// initStorage opens the configured database, migrates it and seeds the
// default categories.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	registry := category.NewRegistry(store, common.SystemClock{})
	if _, err := registry.SeedDefaultsIfEmpty(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed default categories: %w", err)
	}

	slog.Debug("Opened database", "path", dbPath)
	return store, nil
}

// withApp opens the database for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	return fn(ctx, &app{store: store, clock: common.SystemClock{}})
}

// currentUser resolves --user (or user.id) as a user id or an email address.
func (a *app) currentUser(ctx context.Context) (*model.User, error) {
	ref := strings.TrimSpace(viper.GetString("user.id"))
	if ref == "" {
		return nil, common.NewUserError("no user selected; pass --user or set user.id in the config", nil)
	}

	var user *model.User
	err := service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		var err error
		if id, parseErr := uuid.Parse(ref); parseErr == nil {
			user, err = tx.GetUser(ctx, id)
		} else {
			user, err = tx.GetUserByEmail(ctx, ref)
		}
		return err
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("unknown user %q; create one with 'spent users add'", ref), err)
	}
	return user, err
}

// monthFlags registers --year and --month; zero means the current month.
func monthFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year", 0, "year (default: current)")
	cmd.Flags().Int("month", 0, "month 1-12 (default: current)")
}

func monthFromFlags(cmd *cobra.Command) (year, month int) {
	year, _ = cmd.Flags().GetInt("year")
	month, _ = cmd.Flags().GetInt("month")
	return year, month
}

func parseMoneyFlag(cmd *cobra.Command, name string) (model.Money, error) {
	raw, _ := cmd.Flags().GetString(name)
	m, err := model.ParseMoney(raw)
	if err != nil {
		return model.Money{}, common.InvalidInput("--%s: %v", name, err)
	}
	return m, nil
}

func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, common.InvalidInput("--%s: %v", name, err)
	}
	return &d, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.InvalidInput("invalid %s id %q", what, raw)
	}
	return id, nil
}

// resolveCategory accepts a category id or a case-insensitive name among the
// categories visible to userID.
func (a *app) resolveCategory(ctx context.Context, userID uuid.UUID, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, common.InvalidInput("--category is required")
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}

	visible, err := category.NewRegistry(a.store, a.clock).ListVisible(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	for _, c := range visible {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return 0, common.NewUserError(fmt.Sprintf("no category named %q; see 'spent categories list'", ref), common.ErrNotFound)
}
