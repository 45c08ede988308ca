package product

import (
	"time"

	"github.com/google/uuid"
)

// Product is the stored catalog record.
type Product struct {
	ID          uuid.UUID
	Title       string
	Description string
	Price       float64
	Stock       int32
	Category    string
	Thumbnails  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListQuery struct {
	Page      int      `form:"page,default=1"`
	Limit     int      `form:"limit,default=10"`
	Category  string   `form:"category"`
	Available *bool    `form:"available"`
	Search    string   `form:"query"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	Sort      string   `form:"sort"`
}

type ListRequest struct {
	Page      int
	Limit     int
	Category  string
	Available *bool
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string
}

type ListResult struct {
	Items      []ProductResponse
	Total      int64
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevLink   *string
	NextLink   *string
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int32   `json:"stock" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Thumbnails  []string `json:"thumbnails"`
}

// UpdateProductRequest carries patch semantics: nil means keep the stored
// value. The record id is never taken from the body.
type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int32   `json:"stock" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

type ProductResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int32    `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
	CreatedAt   string   `json:"createdAt"`
}
