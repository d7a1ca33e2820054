package store

import (
	"context"
	"errors"

	"model-catalog-service/internal/model"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Sort orders accepted by ModelStore.Find.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// FrameworkAll is the sentinel framework value meaning "no filter".
const FrameworkAll = "all"

// ModelFilter narrows and orders a model listing.
type ModelFilter struct {
	Search    string // case-insensitive substring match on name
	Framework string // exact match; empty or FrameworkAll disables the filter
	CreatedBy string // exact match; empty disables the filter
	Sort      string // SortNewest (default), SortOldest or SortPopular
	Limit     int64  // result cap; zero or negative means unbounded
}

// ModelUpdate carries the mutable model fields for an update. The update
// timestamp is stamped by the store.
type ModelUpdate struct {
	Name        string
	Framework   string
	UseCase     string
	Dataset     string
	Description string
	Image       string
}

// ModelStore persists catalog entries.
type ModelStore interface {
	Insert(ctx context.Context, m *model.Model) (string, error)
	FindByID(ctx context.Context, id string) (*model.Model, error)
	Find(ctx context.Context, filter ModelFilter) ([]model.Model, error)
	Update(ctx context.Context, id string, fields ModelUpdate) (int64, error)
	// IncrementPurchased applies the store's native atomic single-field
	// increment. It must never be replaced by a read-then-write pair.
	IncrementPurchased(ctx context.Context, id string, delta int64) error
	SetPurchased(ctx context.Context, id string, value int64) error
	Delete(ctx context.Context, id string) (int64, error)
}

// PurchaseStore persists immutable purchase records.
type PurchaseStore interface {
	Insert(ctx context.Context, p *model.Purchase) (string, error)
	FindByPurchaser(ctx context.Context, email string) ([]model.Purchase, error)
	FindByModel(ctx context.Context, modelID string) ([]model.Purchase, error)
	CountByModel(ctx context.Context, modelID string) (int64, error)
	CountByModels(ctx context.Context, modelIDs []string) (int64, error)
	StatsByModels(ctx context.Context, modelIDs []string) ([]model.ModelPurchaseStat, error)
	DeleteByModel(ctx context.Context, modelID string) (int64, error)
}
