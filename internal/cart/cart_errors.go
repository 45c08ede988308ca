package cart

import (
	"errors"
	"net/http"

	"go-tienda-api/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCartID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid cart ID",
		http.StatusBadRequest,
	)

	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product ID",
		http.StatusBadRequest,
	)

	ErrCartNotFound = apperror.New(
		apperror.CodeNotFound,
		"Cart not found",
		http.StatusNotFound,
	)

	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrCartItemNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found in cart",
		http.StatusNotFound,
	)

	ErrInvalidQty = apperror.New(
		apperror.CodeInvalidInput,
		"Quantity must be a positive integer",
		http.StatusBadRequest,
	)
)

func MapValidationError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			if fe.Field() == "Quantity" {
				return ErrInvalidQty
			}
		}
	}
	return ErrInvalidQty
}
