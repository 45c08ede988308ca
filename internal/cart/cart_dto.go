package cart

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// CartItem is one line of a cart. A cart holds at most one line per product.
type CartItem struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type AddItemRequest struct {
	// omitted quantity defaults to 1 in the handler
	Quantity int32 `json:"quantity" validate:"omitempty,gt=0"`
}

type UpdateQtyRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type ReplaceItem struct {
	Product  string `json:"product" validate:"required"`
	Quantity int32  `json:"quantity" validate:"required,gt=0"`
}

// ReplaceItemsRequest swaps the whole line-item list. Product references are
// not checked against the catalog here; the bulk update trusts the caller.
type ReplaceItemsRequest struct {
	Products []ReplaceItem `json:"products" validate:"required,dive"`
}

// ProductSummary is the catalog data resolved for a line at read time. It is
// nil in responses when the referenced product no longer exists.
type ProductSummary struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Stock    int32   `json:"stock"`
}

type CartItemResponse struct {
	ProductID string          `json:"product"`
	Quantity  int32           `json:"quantity"`
	Product   *ProductSummary `json:"productDetail"`
}

type CartResponse struct {
	ID    string             `json:"id"`
	Items []CartItemResponse `json:"items"`
}
