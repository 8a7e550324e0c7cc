package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("model: validation failed")
	ErrNotFound           = errors.New("model: not found")
	ErrInsufficientPoints = errors.New("model: insufficient points")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model: %s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type InsufficientPointsError struct {
	ItemID    string
	Cost      int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("model: item %q costs %d points, %d available", e.ItemID, e.Cost, e.Available)
}

func (e *InsufficientPointsError) Unwrap() error { return ErrInsufficientPoints }
