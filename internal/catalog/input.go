package catalog

import "strings"

// ModelInput carries the caller-supplied model fields for create and update.
type ModelInput struct {
	Name        string `json:"name"`
	Framework   string `json:"framework"`
	UseCase     string `json:"useCase"`
	Dataset     string `json:"dataset"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// normalize trims surrounding whitespace from every field.
func (in ModelInput) normalize() ModelInput {
	return ModelInput{
		Name:        strings.TrimSpace(in.Name),
		Framework:   strings.TrimSpace(in.Framework),
		UseCase:     strings.TrimSpace(in.UseCase),
		Dataset:     strings.TrimSpace(in.Dataset),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
	}
}

// validate returns a ValidationError naming every empty field, or nil.
// Fields are checked after trimming, so all-whitespace values are rejected.
func (in ModelInput) validate() error {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"name", in.Name},
		{"framework", in.Framework},
		{"useCase", in.UseCase},
		{"dataset", in.Dataset},
		{"description", in.Description},
		{"image", in.Image},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
