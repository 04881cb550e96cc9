package postgres

import (
	"errors"

	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"gorm.io/gorm"
)

// getDB prefers the caller's transaction over the base connection
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// translateError maps gorm sentinels onto repository errors. The connection
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	default:
		return err
	}
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
