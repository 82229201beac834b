// Package repository содержит реализации репозиториев для работы с базой данных.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"dailymind/internal/model"

	"github.com/uptrace/bun/driver/pgdriver"
)

const uniqueViolation = "23505"

// wrapError переводит ошибки драйвера в доменные ошибки
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == uniqueViolation
	}
	return false
}

// expectAffected возвращает ErrNotFound, если запрос не затронул ни одной строки
func expectAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}
