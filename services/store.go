package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// findByID loads one record or returns a NotFound *Error
func findByID[T any](tx *gorm.DB, resource string, id uint) (*T, error) {
	var record T
	if err := tx.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(resource, id)
		}
		return nil, fmt.Errorf("failed to load %s %d: %w", resource, id, err)
	}
	return &record, nil
}

// paginate applies skip/limit with the listing defaults
func paginate(tx *gorm.DB, skip, limit int) (*gorm.DB, error) {
	if skip < 0 {
		return nil, validationError("skip must not be negative")
	}
	if limit < 0 {
		return nil, validationError("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return tx.Offset(skip).Limit(limit), nil
}

// whereNullable matches a nullable integer column against v, using IS NULL for nil
func whereNullable(tx *gorm.DB, column string, v *int) *gorm.DB {
	if v == nil {
		return tx.Where(column + " IS NULL")
	}
	return tx.Where(column+" = ?", *v)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in a
// value; use it with ESCAPE '\'
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// isUniqueViolation detects duplicate key errors (works with both PostgreSQL and SQLite)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique")
}
