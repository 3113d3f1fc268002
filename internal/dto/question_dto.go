package dto

// QuestionResponse is a question as shown on the evaluation form.
type QuestionResponse struct {
	ID           uint   `json:"id"`
	Text         string `json:"text"`
	DisplayOrder int    `json:"display_order"`
}

// CategoryResponse is a category with its questions in display order.
type CategoryResponse struct {
	ID           uint               `json:"id"`
	Name         string             `json:"name"`
	DisplayOrder int                `json:"display_order"`
	Questions    []QuestionResponse `json:"questions"`
}

// CategoryCreateRequest creates an evaluation category.
type CategoryCreateRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	DisplayOrder *int   `json:"display_order"`
}

// QuestionCreateRequest creates an evaluation question.
type QuestionCreateRequest struct {
	CategoryID   uint   `json:"category_id" validate:"required"`
	Text         string `json:"text" validate:"required,max=2000"`
	DisplayOrder *int   `json:"display_order"`
}

// SeedCatalogRequest loads a whole evaluation form at once.
type SeedCatalogRequest struct {
	Categories []SeedCategory `json:"categories" validate:"required,min=1,dive"`
}

// SeedCategory is a category with the questions it should contain.
type SeedCategory struct {
	Name         string         `json:"name" validate:"required,max=255"`
	DisplayOrder int            `json:"display_order"`
	Questions    []SeedQuestion `json:"questions" validate:"dive"`
}

// SeedQuestion is a question within a seeded category.
type SeedQuestion struct {
	Text         string `json:"text" validate:"required,max=2000"`
	DisplayOrder int    `json:"display_order"`
}
