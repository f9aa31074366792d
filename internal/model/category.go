package model

import (
	"time"

	"github.com/google/uuid"
)

// Owner records who a category belongs to: either shared by every user or
// owned by exactly one. The zero value is Shared.
type Owner struct {
	user  uuid.UUID
	owned bool
}

// SharedOwner returns the owner of default categories visible to all users.
func SharedOwner() Owner {
	return Owner{}
}

// OwnedBy returns an owner restricted to a single user.
func OwnedBy(userID uuid.UUID) Owner {
	return Owner{user: userID, owned: true}
}

// IsShared reports whether the category is visible to every user.
func (o Owner) IsShared() bool {
	return !o.owned
}

// UserID returns the owning user and true, or uuid.Nil and false for shared categories.
func (o Owner) UserID() (uuid.UUID, bool) {
	return o.user, o.owned
}

// Permits reports whether userID may use a category with this owner.
func (o Owner) Permits(userID uuid.UUID) bool {
	return !o.owned || o.user == userID
}

func (o Owner) String() string {
	if !o.owned {
		return "shared"
	}
	return o.user.String()
}

// Category groups expenses. Default categories are shared; users may add private ones.
type Category struct {
	CreatedAt time.Time `json:"createdAt"`
	Owner     Owner     `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	ID        int64     `json:"id"`
}

// IsDefault reports whether the category is one of the shared defaults.
func (c Category) IsDefault() bool {
	return c.Owner.IsShared()
}

// Default category appearance.
const (
	DefaultCategoryColor = "#808080"
	DefaultCategoryIcon  = "tag"
)

// CategorySeed describes one of the shared categories created at bootstrap.
type CategorySeed struct {
	Name  string
	Color string
	Icon  string
}

// DefaultCategories is the set of shared categories seeded into an empty store.
var DefaultCategories = []CategorySeed{
	{Name: "Food", Color: "#FF5733", Icon: "utensils"},
	{Name: "Transport", Color: "#33FF57", Icon: "car"},
	{Name: "Shopping", Color: "#3357FF", Icon: "shopping-bag"},
	{Name: "Entertainment", Color: "#FF33A8", Icon: "film"},
	{Name: "Bills", Color: "#33FFF5", Icon: "file-text"},
	{Name: "Health", Color: "#FF3333", Icon: "heart"},
	{Name: "Education", Color: "#A833FF", Icon: "book"},
	{Name: "Other", Color: "#808080", Icon: "more-horizontal"},
}
