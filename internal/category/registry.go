// Package category manages expense categories and the rules deciding which
// user may see and use each one.
package category

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

const (
	maxNameLength = 50
	maxIconLength = 50
	colorPattern  = `^#[0-9A-Fa-f]{6}$`
)

// NewCategory is the user-supplied part of a private category.
type NewCategory struct {
	Name  string
	Color string
	Icon  string
}

// Registry owns category lifecycle and visibility.
type Registry struct {
	store service.Storage
	clock common.Clock
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store service.Storage, clock common.Clock) *Registry {
	return &Registry{store: store, clock: clock}
}

// ListVisible returns every shared category plus the ones owned by userID.
func (r *Registry) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}

	var categories []model.Category
	err := service.WithTx(ctx, r.store, func(tx service.Transaction) error {
		var err error
		categories, err = tx.GetVisibleCategories(ctx, userID)
		return err
	})
	return categories, err
}

// ListDefaults returns the shared categories only.
func (r *Registry) ListDefaults(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := service.WithTx(ctx, r.store, func(tx service.Transaction) error {
		var err error
		categories, err = tx.GetSharedCategories(ctx)
		return err
	})
	return categories, err
}

// Get returns a category the user is allowed to use.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID, categoryID int64) (*model.Category, error) {
	var category *model.Category
	err := service.WithTx(ctx, r.store, func(tx service.Transaction) error {
		var err error
		category, err = Resolve(ctx, tx, userID, categoryID)
		return err
	})
	return category, err
}

// Create adds a private category owned by userID. Users can never create
// shared categories.
func (r *Registry) Create(ctx context.Context, userID uuid.UUID, in NewCategory) (*model.Category, error) {
	if userID == uuid.Nil {
		return nil, common.InvalidInput("user id is required")
	}

	category, err := normalize(in)
	if err != nil {
		return nil, err
	}
	category.Owner = model.OwnedBy(userID)
	category.CreatedAt = r.clock.Now().UTC()

	err = service.WithTx(ctx, r.store, func(tx service.Transaction) error {
		return tx.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// SeedDefaultsIfEmpty inserts the default shared categories when none exist.
// It reports whether anything was inserted and is safe to call on every start.
func (r *Registry) SeedDefaultsIfEmpty(ctx context.Context) (bool, error) {
	seeded := false
	err := service.WithTx(ctx, r.store, func(tx service.Transaction) error {
		count, err := tx.CountSharedCategories(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := r.clock.Now().UTC()
		for _, seed := range model.DefaultCategories {
			c := model.Category{
				Name:      seed.Name,
				Color:     seed.Color,
				Icon:      seed.Icon,
				Owner:     model.SharedOwner(),
				CreatedAt: now,
			}
			if err := tx.CreateCategory(ctx, &c); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		// Another process seeded between our count and insert.
		if errors.Is(err, common.ErrConflict) {
			return false, nil
		}
		return false, err
	}

	if seeded {
		slog.Info("seeded default categories", "count", len(model.DefaultCategories))
	}
	return seeded, nil
}

// Authorize allows shared categories and categories owned by userID.
func Authorize(category *model.Category, userID uuid.UUID) error {
	if category.Owner.Permits(userID) {
		return nil
	}
	return common.AccessDenied("category %d belongs to another user", category.ID)
}

// Resolve loads a category through store and checks userID may use it.
// It is meant to run inside the caller's transaction.
func Resolve(ctx context.Context, store service.Storage, userID uuid.UUID, categoryID int64) (*model.Category, error) {
	if categoryID <= 0 {
		return nil, common.InvalidInput("category id is required")
	}
	category, err := store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(category, userID); err != nil {
		return nil, err
	}
	return category, nil
}

func normalize(in NewCategory) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.InvalidInput("category name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, common.InvalidInput("category name must be at most %d characters", maxNameLength)
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = model.DefaultCategoryColor
	}
	ok, err := common.MatchRegex(colorPattern, color)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.InvalidInput("color %q must look like #RRGGBB", color)
	}

	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = model.DefaultCategoryIcon
	}
	if utf8.RuneCountInString(icon) > maxIconLength {
		return nil, common.InvalidInput("icon must be at most %d characters", maxIconLength)
	}

	return &model.Category{
		Name:  name,
		Color: strings.ToUpper(color),
		Icon:  icon,
	}, nil
}
