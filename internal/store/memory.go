package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"model-catalog-service/internal/model"
)

// Memory keeps catalog documents in-process. It mirrors the mongo store's
// semantics closely enough for service tests, including the atomicity of the
// purchase counter increment.
type Memory struct {
	mu        sync.RWMutex
	models    map[string]model.Model
	morder    []string // model insertion order
	purchases map[string]model.Purchase
	porder    []string // purchase insertion order
}

// NewMemory initializes an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		models:    make(map[string]model.Model),
		purchases: make(map[string]model.Purchase),
	}
}

// Models returns the ModelStore view of the shared data.
func (m *Memory) Models() ModelStore {
	return &memoryModelStore{mem: m}
}

// Purchases returns the PurchaseStore view of the shared data.
func (m *Memory) Purchases() PurchaseStore {
	return &memoryPurchaseStore{mem: m}
}

type memoryModelStore struct {
	mem *Memory
}

func (s *memoryModelStore) Insert(_ context.Context, doc *model.Model) (string, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	id := doc.ID.Hex()
	if _, exists := s.mem.models[id]; !exists {
		s.mem.morder = append(s.mem.morder, id)
	}
	s.mem.models[id] = *doc
	return id, nil
}

func (s *memoryModelStore) FindByID(_ context.Context, id string) (*model.Model, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()
	doc, ok := s.mem.models[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *memoryModelStore) Find(_ context.Context, filter ModelFilter) ([]model.Model, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	result := make([]model.Model, 0, len(s.mem.morder))
	for _, id := range s.mem.morder {
		doc, ok := s.mem.models[id]
		if !ok {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(doc.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Framework != "" && filter.Framework != FrameworkAll &&
			doc.Framework != filter.Framework {
			continue
		}
		if filter.CreatedBy != "" && doc.CreatedBy != filter.CreatedBy {
			continue
		}
		result = append(result, doc)
	}

	switch filter.Sort {
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Purchased > result[j].Purchased
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}

	if filter.Limit > 0 && int64(len(result)) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *memoryModelStore) Update(_ context.Context, id string, fields ModelUpdate) (int64, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	doc, ok := s.mem.models[id]
	if !ok {
		return 0, ErrNotFound
	}
	if doc.Name == fields.Name &&
		doc.Framework == fields.Framework &&
		doc.UseCase == fields.UseCase &&
		doc.Dataset == fields.Dataset &&
		doc.Description == fields.Description &&
		doc.Image == fields.Image {
		return 0, nil
	}
	doc.Name = fields.Name
	doc.Framework = fields.Framework
	doc.UseCase = fields.UseCase
	doc.Dataset = fields.Dataset
	doc.Description = fields.Description
	doc.Image = fields.Image
	doc.UpdatedAt = time.Now().UTC()
	s.mem.models[id] = doc
	return 1, nil
}

func (s *memoryModelStore) IncrementPurchased(_ context.Context, id string, delta int64) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	doc, ok := s.mem.models[id]
	if !ok {
		return ErrNotFound
	}
	doc.Purchased += delta
	s.mem.models[id] = doc
	return nil
}

func (s *memoryModelStore) SetPurchased(_ context.Context, id string, value int64) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	doc, ok := s.mem.models[id]
	if !ok {
		return ErrNotFound
	}
	doc.Purchased = value
	s.mem.models[id] = doc
	return nil
}

func (s *memoryModelStore) Delete(_ context.Context, id string) (int64, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.models[id]; !ok {
		return 0, nil
	}
	delete(s.mem.models, id)
	return 1, nil
}

type memoryPurchaseStore struct {
	mem *Memory
}

func (s *memoryPurchaseStore) Insert(_ context.Context, doc *model.Purchase) (string, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	id := doc.ID.Hex()
	if _, exists := s.mem.purchases[id]; !exists {
		s.mem.porder = append(s.mem.porder, id)
	}
	s.mem.purchases[id] = *doc
	return id, nil
}

func (s *memoryPurchaseStore) FindByPurchaser(_ context.Context, email string) ([]model.Purchase, error) {
	return s.find(func(p model.Purchase) bool { return p.PurchasedBy == email }), nil
}

func (s *memoryPurchaseStore) FindByModel(_ context.Context, modelID string) ([]model.Purchase, error) {
	return s.find(func(p model.Purchase) bool { return p.ModelID == modelID }), nil
}

func (s *memoryPurchaseStore) find(match func(model.Purchase) bool) []model.Purchase {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()
	result := make([]model.Purchase, 0, len(s.mem.porder))
	for _, id := range s.mem.porder {
		if p, ok := s.mem.purchases[id]; ok && match(p) {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PurchasedAt.After(result[j].PurchasedAt)
	})
	return result
}

func (s *memoryPurchaseStore) CountByModel(_ context.Context, modelID string) (int64, error) {
	return int64(len(s.find(func(p model.Purchase) bool { return p.ModelID == modelID }))), nil
}

func (s *memoryPurchaseStore) CountByModels(_ context.Context, modelIDs []string) (int64, error) {
	ids := toSet(modelIDs)
	return int64(len(s.find(func(p model.Purchase) bool { return ids[p.ModelID] }))), nil
}

func (s *memoryPurchaseStore) StatsByModels(_ context.Context, modelIDs []string) ([]model.ModelPurchaseStat, error) {
	ids := toSet(modelIDs)
	matched := s.find(func(p model.Purchase) bool { return ids[p.ModelID] })

	byModel := make(map[string]*model.ModelPurchaseStat)
	order := make([]string, 0, len(matched))
	for _, p := range matched {
		stat, ok := byModel[p.ModelID]
		if !ok {
			stat = &model.ModelPurchaseStat{ModelID: p.ModelID, ModelName: p.ModelName}
			byModel[p.ModelID] = stat
			order = append(order, p.ModelID)
		}
		stat.Count++
	}

	stats := make([]model.ModelPurchaseStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byModel[id])
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats, nil
}

func (s *memoryPurchaseStore) DeleteByModel(_ context.Context, modelID string) (int64, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	var deleted int64
	kept := s.mem.porder[:0]
	for _, id := range s.mem.porder {
		p, ok := s.mem.purchases[id]
		if ok && p.ModelID == modelID {
			delete(s.mem.purchases, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	s.mem.porder = kept
	return deleted, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
