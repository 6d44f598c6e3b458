package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Specification narrows, orders or pages a repository query. The in-memory
// store interprets the same values, so every implementation here has a
// counterpart there.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy sorts on a single column. Field is quoted as an identifier, never
// interpolated.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
}

// Pagination skips Offset rows and returns at most Limit. A Limit of zero or
// less means no limit.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	return db
}
