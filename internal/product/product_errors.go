package product

import (
	"errors"
	"net/http"

	"go-tienda-api/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product ID",
		http.StatusBadRequest,
	)

	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrMissingFields = apperror.New(
		apperror.CodeInvalidInput,
		"All of title, description, price, stock and category are required",
		http.StatusBadRequest,
	)

	ErrInvalidPrice = apperror.New(
		apperror.CodeInvalidInput,
		"Price must be a non-negative number",
		http.StatusBadRequest,
	)

	ErrInvalidStock = apperror.New(
		apperror.CodeInvalidInput,
		"Stock must be a non-negative integer",
		http.StatusBadRequest,
	)

	ErrInvalidPagination = apperror.New(
		apperror.CodeInvalidInput,
		"Page and limit must be positive integers",
		http.StatusBadRequest,
	)

	ErrInvalidPriceRange = apperror.New(
		apperror.CodeInvalidInput,
		"minPrice cannot be greater than maxPrice",
		http.StatusBadRequest,
	)

	ErrThumbnailRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Thumbnail file is required",
		http.StatusBadRequest,
	)
)

func MapValidationError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return ErrMissingFields
	}

	for _, fe := range vErrs {
		switch fe.Field() {
		case "Price":
			if fe.Tag() == "gte" {
				return ErrInvalidPrice
			}
		case "Stock":
			if fe.Tag() == "gte" {
				return ErrInvalidStock
			}
		}
	}
	return ErrMissingFields
}
