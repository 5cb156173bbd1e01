package repository

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateHandle  = errors.New("field handle already exists")
	ErrInvalidCondition = errors.New("invalid rating condition")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
