package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognizes duplicate-key failures from every driver
// the stores run on: gorm's translated error, pgx, lib/pq and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// classifyDBError maps a write failure onto an AppError. A unique violation
// becomes a Conflict carrying conflictMsg.
func classifyDBError(err error, conflictMsg, internalMsg string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if conflictMsg != "" && isUniqueViolation(err) {
		return &AppError{Kind: KindConflict, Message: conflictMsg, Err: err}
	}
	return Internal(internalMsg, err)
}
