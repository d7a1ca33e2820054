package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"model-catalog-service/internal/model"
	"model-catalog-service/internal/store"
)

// Purchase records a purchase of the model by buyerEmail and returns the
// model with its updated counter. Any authenticated user may purchase,
// including the creator.
//
// The counter increment and the purchase insert are two separate
// single-document writes; there is no cross-document transaction. A crash
// between them leaves the counter ahead of the records, which is tolerated
// drift bounded by RepairPurchaseCount.
func (s *Service) Purchase(ctx context.Context, buyerEmail, id string) (*model.Model, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}
	m, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}

	// Atomic single-field increment, never read-modify-write: concurrent
	// purchases of the same model must not lose updates.
	if err := s.models.IncrementPurchased(ctx, id, 1); err != nil {
		return nil, s.mapStoreErr(err)
	}

	purchase := &model.Purchase{
		ModelID:     id,
		ModelName:   m.Name,
		CreatedBy:   m.CreatedBy,
		PurchasedBy: buyerEmail,
		PurchasedAt: time.Now().UTC(),
	}
	if _, err := s.purchases.Insert(ctx, purchase); err != nil {
		// The increment above is not rolled back; the drift is repaired
		// out of band.
		s.log.Error("purchase record insert failed after counter increment",
			zap.String("model_id", id),
			zap.String("purchased_by", buyerEmail),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("model purchased",
		zap.String("model_id", id),
		zap.String("model_name", m.Name),
		zap.String("purchased_by", buyerEmail))

	return s.findModel(ctx, id)
}

// Delete removes a model owned by callerEmail and cascades to its purchase
// records. The model is deleted first; a crash before the cascade leaves
// orphaned purchase records, which render as "model no longer available".
func (s *Service) Delete(ctx context.Context, callerEmail, id string) error {
	if !model.IsValidID(id) {
		return ErrInvalidID
	}
	m, err := s.findModel(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(callerEmail, m) {
		return ErrNotOwner
	}

	if _, err := s.models.Delete(ctx, id); err != nil {
		return err
	}
	deleted, err := s.purchases.DeleteByModel(ctx, id)
	if err != nil {
		return err
	}

	s.log.Info("model deleted",
		zap.String("model_id", id),
		zap.String("deleted_by", callerEmail),
		zap.Int64("purchases_removed", deleted))
	return nil
}

// RepairPurchaseCount recomputes the model's purchase counter from the
// purchase records, the canonical definition of the counter's correctness,
// and writes it back. Only the model's creator may trigger a repair.
func (s *Service) RepairPurchaseCount(ctx context.Context, callerEmail, id string) (int64, error) {
	if !model.IsValidID(id) {
		return 0, ErrInvalidID
	}
	m, err := s.findModel(ctx, id)
	if err != nil {
		return 0, err
	}
	if !CanModify(callerEmail, m) {
		return 0, ErrNotOwner
	}

	count, err := s.purchases.CountByModel(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.models.SetPurchased(ctx, id, count); err != nil {
		return 0, s.mapStoreErr(err)
	}

	if count != m.Purchased {
		s.log.Warn("purchase counter drift repaired",
			zap.String("model_id", id),
			zap.Int64("was", m.Purchased),
			zap.Int64("now", count))
	}
	return count, nil
}

// MyPurchases returns the purchases made by buyerEmail, newest first.
func (s *Service) MyPurchases(ctx context.Context, buyerEmail string) ([]model.Purchase, error) {
	return s.purchases.FindByPurchaser(ctx, buyerEmail)
}

// PurchasesByModel returns the purchases recorded against one model, newest
// first. The model itself may already be deleted.
func (s *Service) PurchasesByModel(ctx context.Context, modelID string) ([]model.Purchase, error) {
	if !model.IsValidID(modelID) {
		return nil, ErrInvalidID
	}
	return s.purchases.FindByModel(ctx, modelID)
}

// PurchaseCount returns the number of purchase records for one model.
func (s *Service) PurchaseCount(ctx context.Context, modelID string) (int64, error) {
	if !model.IsValidID(modelID) {
		return 0, ErrInvalidID
	}
	return s.purchases.CountByModel(ctx, modelID)
}

// Stats summarizes purchases across every model created by creatorEmail.
func (s *Service) Stats(ctx context.Context, creatorEmail string) (*model.PurchaseStats, error) {
	mine, err := s.models.Find(ctx, store.ModelFilter{CreatedBy: creatorEmail})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(mine))
	for _, m := range mine {
		ids = append(ids, m.ID.Hex())
	}

	total, err := s.purchases.CountByModels(ctx, ids)
	if err != nil {
		return nil, err
	}
	byModel, err := s.purchases.StatsByModels(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &model.PurchaseStats{
		TotalModels:      int64(len(mine)),
		TotalPurchases:   total,
		PurchasesByModel: byModel,
	}, nil
}
