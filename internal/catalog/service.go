package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"model-catalog-service/internal/model"
	"model-catalog-service/internal/store"
)

// featuredCount is the fixed size of the featured-models preview.
const featuredCount = 6

// ListFilter carries the supported listing query parameters.
type ListFilter struct {
	Search    string
	Framework string
	Sort      string
	Limit     int64
}

// Service orchestrates catalog queries, the purchase workflow and the
// ownership checks they depend on. Store handles are injected; the service
// holds no global state.
type Service struct {
	models    store.ModelStore
	purchases store.PurchaseStore
	log       *zap.Logger
}

// NewService creates a Service with explicit store handles.
func NewService(models store.ModelStore, purchases store.PurchaseStore, log *zap.Logger) *Service {
	return &Service{models: models, purchases: purchases, log: log}
}

// List returns models matching the filter. Search is a case-insensitive
// substring match on the name; framework "all" (or empty) means no filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]model.Model, error) {
	return s.models.Find(ctx, store.ModelFilter{
		Search:    filter.Search,
		Framework: filter.Framework,
		Sort:      filter.Sort,
		Limit:     filter.Limit,
	})
}

// Featured returns the newest models as a fixed-size home page preview.
func (s *Service) Featured(ctx context.Context) ([]model.Model, error) {
	return s.models.Find(ctx, store.ModelFilter{
		Sort:  store.SortNewest,
		Limit: featuredCount,
	})
}

// Mine returns the models created by the given principal, newest first.
func (s *Service) Mine(ctx context.Context, creatorEmail string) ([]model.Model, error) {
	return s.models.Find(ctx, store.ModelFilter{
		CreatedBy: creatorEmail,
		Sort:      store.SortNewest,
	})
}

// Get returns a single model by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Model, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}
	return s.findModel(ctx, id)
}

// Create validates and stores a new catalog entry owned by creatorEmail.
func (s *Service) Create(ctx context.Context, creatorEmail string, in ModelInput) (*model.Model, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	m := &model.Model{
		Name:        in.Name,
		Framework:   in.Framework,
		UseCase:     in.UseCase,
		Dataset:     in.Dataset,
		Description: in.Description,
		Image:       in.Image,
		CreatedBy:   creatorEmail,
		CreatedAt:   time.Now().UTC(),
		Purchased:   0,
	}
	id, err := s.models.Insert(ctx, m)
	if err != nil {
		return nil, err
	}

	s.log.Info("model created",
		zap.String("model_id", id),
		zap.String("name", m.Name),
		zap.String("created_by", creatorEmail))
	return m, nil
}

// Update replaces the mutable fields of a model owned by callerEmail.
// Existence is checked before ownership, ownership before field validation,
// and an update that changes nothing is a client error.
func (s *Service) Update(ctx context.Context, callerEmail, id string, in ModelInput) (*model.Model, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}
	existing, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(callerEmail, existing) {
		return nil, ErrNotOwner
	}

	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Name == existing.Name &&
		in.Framework == existing.Framework &&
		in.UseCase == existing.UseCase &&
		in.Dataset == existing.Dataset &&
		in.Description == existing.Description &&
		in.Image == existing.Image {
		return nil, ErrNoChanges
	}

	modified, err := s.models.Update(ctx, id, store.ModelUpdate{
		Name:        in.Name,
		Framework:   in.Framework,
		UseCase:     in.UseCase,
		Dataset:     in.Dataset,
		Description: in.Description,
		Image:       in.Image,
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if modified == 0 {
		return nil, ErrNoChanges
	}

	s.log.Info("model updated",
		zap.String("model_id", id),
		zap.String("updated_by", callerEmail))
	return s.findModel(ctx, id)
}

// findModel loads a model and maps the store's not-found sentinel to the
// service-level one.
func (s *Service) findModel(ctx context.Context, id string) (*model.Model, error) {
	m, err := s.models.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return m, nil
}

func (s *Service) mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrModelNotFound
	}
	return err
}
