// Package testutil provides test utilities for the spent project: an isolated
// in-memory store plus helpers for seeding users, categories and expenses.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/storage"
)

// Now is the instant returned by the clock of every TestDB: Saturday 15 March 2025, 10:00 UTC.
var Now = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	Clock   common.FixedClock
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	alice := db.MustCreateUser("Alice")
//	cats := db.MustSeedDefaults()
//	db.MustAddExpense(alice.ID, cats.MustFind(t, "Food").ID, "12.50", "2025-03-14")
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Clock:   common.FixedClock{T: Now},
		t:       t,
	}
}

// MustCreateUser registers a user with a derived email address.
func (db *TestDB) MustCreateUser(name string) model.User {
	db.t.Helper()
	user := model.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		CreatedAt: Now,
	}
	if err := db.Storage.CreateUser(context.Background(), &user); err != nil {
		db.t.Fatalf("failed to create user %q: %v", name, err)
	}
	return user
}

// MustSeedDefaults inserts the shared default categories directly through the store.
func (db *TestDB) MustSeedDefaults() Categories {
	db.t.Helper()
	cats := make(Categories, 0, len(model.DefaultCategories))
	for _, seed := range model.DefaultCategories {
		c := model.Category{Name: seed.Name, Color: seed.Color, Icon: seed.Icon, CreatedAt: Now}
		if err := db.Storage.CreateCategory(context.Background(), &c); err != nil {
			db.t.Fatalf("failed to seed category %q: %v", seed.Name, err)
		}
		cats = append(cats, c)
	}
	return cats
}

// MustCreatePrivateCategory creates a category owned by userID.
func (db *TestDB) MustCreatePrivateCategory(userID uuid.UUID, name string) model.Category {
	db.t.Helper()
	c := model.Category{
		Name:      name,
		Color:     model.DefaultCategoryColor,
		Icon:      model.DefaultCategoryIcon,
		Owner:     model.OwnedBy(userID),
		CreatedAt: Now,
	}
	if err := db.Storage.CreateCategory(context.Background(), &c); err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return c
}

// MustAddExpense inserts an expense paid by card, bypassing domain validation.
func (db *TestDB) MustAddExpense(userID uuid.UUID, categoryID int64, amount, date string) model.Expense {
	db.t.Helper()
	d, err := model.ParseDate(date)
	if err != nil {
		db.t.Fatalf("bad date %q: %v", date, err)
	}
	e := model.Expense{
		UserID:        userID,
		CategoryID:    categoryID,
		Amount:        model.MustParseMoney(amount),
		Date:          d,
		PaymentMethod: model.PaymentCard,
		CreatedAt:     Now,
		UpdatedAt:     Now,
	}
	if err := db.Storage.CreateExpense(context.Background(), &e); err != nil {
		db.t.Fatalf("failed to add expense: %v", err)
	}
	return e
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name string) *model.Category {
	for i := range c {
		if c[i].Name == name {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name string) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}
