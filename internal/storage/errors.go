package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kovalyov-valentin/news-portal/internal/model"
)

// Код ошибки postgres unique_violation
const uniqueViolation = pq.ErrorCode("23505")

// Переводим ошибки драйвера в наши sentinel ошибки, чтобы наверху не знать про postgres
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, model.ErrDuplicate)
	}

	return fmt.Errorf("%s: %w: %v", op, model.ErrStoreUnavailable, err)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	return &v.Int64
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
