package storage

import "errors"

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInvoiceNumberTaken = errors.New("invoice number already taken")
	ErrInvoiceNotEditable = errors.New("invoice is not editable")
)
