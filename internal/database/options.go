package database

import (
	"fmt"
	"strings"

	"github.com/pagekeep/doclink/domain/storage"
	"gorm.io/gorm"
)

// ApplyOptions builds a storage.Query from the given options and applies it to
// a GORM session.
func ApplyOptions(db *gorm.DB, options ...storage.Option) *gorm.DB {
	q := storage.Build(options...)

	db = applyConditions(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}

	if q.LimitValue() > 0 {
		db = db.Limit(q.LimitValue())
	}

	if q.OffsetValue() > 0 {
		db = db.Offset(q.OffsetValue())
	}

	return db
}

// ApplyConditions applies only WHERE conditions (no limit/offset/order),
// for COUNT and DELETE statements.
func ApplyConditions(db *gorm.DB, options ...storage.Option) *gorm.DB {
	return applyConditions(db, storage.Build(options...))
}

func toLower(v any) string {
	s, _ := v.(string)
	return strings.ToLower(s)
}

func applyConditions(db *gorm.DB, q storage.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		switch {
		case cond.In():
			db = db.Where(fmt.Sprintf("%s IN ?", cond.Field()), cond.Value())
		case cond.IsNull():
			if want, _ := cond.Value().(bool); want {
				db = db.Where(fmt.Sprintf("%s IS NULL", cond.Field()))
			} else {
				db = db.Where(fmt.Sprintf("%s IS NOT NULL", cond.Field()))
			}
		case cond.Like():
			db = db.Where(
				fmt.Sprintf("LOWER(%s) LIKE ?", cond.Field()),
				fmt.Sprintf("%%%s%%", toLower(cond.Value())),
			)
		default:
			db = db.Where(fmt.Sprintf("%s = ?", cond.Field()), cond.Value())
		}
	}
	return db
}
