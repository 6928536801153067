package quotation

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const (
	FieldClientName = "client.name"
	FieldQuantity   = "quantity"
	FieldLines      = "lines"
)

// ValidationError names the input that must be corrected. Index is the cart
// line position for quantity errors and -1 otherwise.
type ValidationError struct {
	Field   string
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("quotation: %s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("quotation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Coded() *pkgerrors.Error {
	details := map[string]any{"field": e.Field, "message": e.Message}
	if e.Index >= 0 {
		details["index"] = e.Index
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "quotation input is invalid").WithDetails(details)
}
