package catalog

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateInput is the payload for creating a product.
type CreateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Quantity    int64    `json:"quantity"`
	Categories  []string `json:"categories"`
}

// Validate applies the request-level rules. The pipeline separately
// re-asserts the numeric invariants before any write.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Quantity, validation.Min(int64(0))),
	)
}

// UpdateInput is a partial product update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Quantity    *int64    `json:"quantity"`
	Categories  *[]string `json:"categories"`
	IsActive    *bool     `json:"is_active"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Quantity, validation.Min(int64(0))),
	)
}
