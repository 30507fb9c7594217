package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrDuplicateSKU      = errors.New("duplicate sku")
	ErrIncompleteOptions = errors.New("incomplete option values")
	ErrInvalidState      = errors.New("invalid state")
	ErrStorage           = errors.New("storage unavailable")
	ErrNotFound          = errors.New("not found")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("sku %q is already in use", e.SKU)
}

func (e *DuplicateSKUError) Is(target error) bool {
	return target == ErrDuplicateSKU
}

// StorageError wraps a failure of the database or the asset store.
type StorageError struct {
	Op  string
	Err error
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// BulkEntryError points at the entry of a bulk request that aborted it.
type BulkEntryError struct {
	Index int
	SKU   string
	Err   error
}

func (e *BulkEntryError) Error() string {
	return fmt.Sprintf("entry %d (sku %q): %v", e.Index, e.SKU, e.Err)
}

func (e *BulkEntryError) Unwrap() error {
	return e.Err
}
