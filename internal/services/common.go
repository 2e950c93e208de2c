package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// quiet scopes db to ctx with SQL logging silenced, for lookups where a miss is expected
func quiet(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// forUpdate adds a row lock to the query. SQLite ignores it; its single writer serializes.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// exists reports whether any row of model matches the condition
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func isMySQL(db *gorm.DB) bool {
	return db.Dialector.Name() == "mysql"
}

// isSQLite covers both the cgo and the pure Go sqlite drivers
func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
