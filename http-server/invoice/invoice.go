// Package invoice holds helpers shared by the invoice handlers.
package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

const DateLayout = "2006-01-02"

var ErrInvalidID = errors.New("invalid invoice id")

func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Status maps service and storage errors to an HTTP status and a message
// safe to show the client.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrInvoiceNotFound):
		return http.StatusNotFound, "Invoice not found"
	case errors.Is(err, storage.ErrCustomerNotFound):
		return http.StatusNotFound, "Customer not found"
	case errors.Is(err, invoicing.ErrNotDraft), errors.Is(err, storage.ErrInvoiceNotEditable):
		return http.StatusConflict, "Invoice is not a draft"
	case errors.Is(err, invoicing.ErrAlreadyCanceled):
		return http.StatusConflict, "Invoice is already canceled"
	case errors.Is(err, storage.ErrInvoiceNumberTaken):
		return http.StatusConflict, "Invoice number was taken concurrently, retry"
	case errors.Is(err, invoicing.ErrInvalidItemType), errors.Is(err, invoicing.ErrInvalidPeriod):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}
