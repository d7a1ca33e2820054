package catalog

import "model-catalog-service/internal/model"

// CanModify reports whether the principal identified by email may mutate m.
// Ownership is plain equality with the record's creator; there are no roles.
func CanModify(email string, m *model.Model) bool {
	return m.CreatedBy == email
}
