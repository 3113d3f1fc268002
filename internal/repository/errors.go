package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrDuplicateEvaluation reports that the student already evaluated the subject.
var ErrDuplicateEvaluation = errors.New("evaluation already exists for student and subject")

// ErrUnknownReference reports an evaluation naming a student, faculty member, subject
// or question that does not exist.
var ErrUnknownReference = errors.New("evaluation references an unknown record")

// ErrEmptyAnswers reports an attempt to persist an evaluation without answers.
var ErrEmptyAnswers = errors.New("evaluation requires at least one answer")

// IsDuplicateKey reports whether err was caused by a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err was caused by a reference to a missing row.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
