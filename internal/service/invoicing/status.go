package invoicing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nippo-invoice/internal/storage"
)

var (
	ErrNotDraft         = errors.New("invoice is not a draft")
	ErrAlreadyCanceled  = errors.New("invoice is already canceled")
	ErrInvalidStatus    = errors.New("invalid invoice status")
	ErrMissingNumber    = errors.New("issued invoice requires a number")
	ErrMissingIssuedAt  = errors.New("issued invoice requires an issue date")
	ErrDraftHasIssuedAt = errors.New("draft invoice must not have an issue date")
)

// CanTransition reports whether from -> to is an allowed one-way move.
func CanTransition(from, to storage.InvoiceStatus) bool {
	switch from {
	case storage.StatusDraft:
		return to == storage.StatusIssued || to == storage.StatusCanceled
	case storage.StatusIssued:
		return to == storage.StatusCanceled
	}
	return false
}

// Validate checks the fields each status requires.
func Validate(inv *storage.Invoice) error {
	switch inv.Status {
	case storage.StatusDraft:
		if inv.IssuedAt != nil {
			return ErrDraftHasIssuedAt
		}
	case storage.StatusIssued:
		if inv.InvoiceNumber == nil || *inv.InvoiceNumber == "" {
			return ErrMissingNumber
		}
		if inv.IssuedAt == nil {
			return ErrMissingIssuedAt
		}
	case storage.StatusCanceled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, inv.Status)
	}
	return nil
}

// Issue moves a draft to issued using the highest number already taken for
// the issue year. The invoice is left untouched on failure.
func Issue(inv *storage.Invoice, highest string, now time.Time) error {
	if inv.Status != storage.StatusDraft {
		return ErrNotDraft
	}

	number := NextNumber(now.Year(), highest)
	issued := *inv
	issued.Status = storage.StatusIssued
	issued.InvoiceNumber = &number
	issued.IssuedAt = &now

	if err := Validate(&issued); err != nil {
		return err
	}

	*inv = issued
	return nil
}

// Cancel soft-deletes the invoice. Canceled is terminal.
func Cancel(inv *storage.Invoice, now time.Time) error {
	if inv.Status == storage.StatusCanceled {
		return ErrAlreadyCanceled
	}
	if !CanTransition(inv.Status, storage.StatusCanceled) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, inv.Status)
	}

	inv.Status = storage.StatusCanceled
	inv.DeletedAt = &now
	return nil
}

func NumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// NextNumber returns INV-<year>-<seq> following highest, which must carry the
// same prefix or be empty. Sequences are padded to three digits and keep
// growing past 999.
func NextNumber(year int, highest string) string {
	prefix := NumberPrefix(year)
	seq := 0

	if strings.HasPrefix(highest, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(highest, prefix)); err == nil {
			seq = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, seq+1)
}
