package apperrors

import (
	"errors"
	"net/http"
)

// Error is a domain error with a fixed message and HTTP status code.
// Handlers compare against the sentinel values below with errors.Is and
// translate the code; services and repositories return them unchanged.
type Error struct {
	Message string
	Code    int
}

func (e *Error) Error() string {
	return e.Message
}

// Cart errors.
var (
	ErrCartNotFound      = &Error{Message: "Cart not found", Code: http.StatusNotFound}
	ErrCartAlreadyExists = &Error{Message: "The user already has a cart", Code: http.StatusConflict}
	ErrProductNotInCart  = &Error{Message: "Product not in cart", Code: http.StatusNotFound}
	ErrEmptyCart         = &Error{Message: "Cart is empty", Code: http.StatusBadRequest}
	// ErrNegativeQuantity is the stock-insufficiency rejection raised before
	// any stock is decremented: on add-to-cart of an out-of-stock product and
	// on the checkout pre-check.
	ErrNegativeQuantity = &Error{Message: "There is not enough availability for a product", Code: http.StatusConflict}
)

// Product errors.
var (
	ErrProductNotFound      = &Error{Message: "Product not found", Code: http.StatusNotFound}
	ErrProductAlreadyExists = &Error{Message: "The product already exists", Code: http.StatusConflict}
	// ErrLowProductStock is the per-item stock-insufficiency rejection raised
	// by the catalog at sell time, after the checkout pre-check has passed.
	ErrLowProductStock     = &Error{Message: "Product stock cannot satisfy the requested quantity", Code: http.StatusConflict}
	ErrInvalidQuantity     = &Error{Message: "Quantity cannot be negative", Code: http.StatusBadRequest}
	ErrArrivalDateInFuture = &Error{Message: "Arrival date cannot be after the current date", Code: http.StatusBadRequest}
	ErrSellBeforeArrival   = &Error{Message: "Selling date cannot be before the arrival date", Code: http.StatusBadRequest}
)

// StatusCode returns the HTTP status for err, or 500 when err is not part
// of the domain taxonomy.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
