package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withRowLock adds SELECT ... FOR UPDATE on dialects that support it. The
// sqlite test database serializes writes on its own, so the clause is skipped
// there.
func withRowLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
