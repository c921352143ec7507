package specification

import "gorm.io/gorm"

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// NoOp is a specification that matches everything. Condition compilation
// falls back to it for unknown operators and missing values.
type NoOp struct{}

func (NoOp) Apply(db *gorm.DB) *gorm.DB {
	return db
}

// All combines specifications with AND.
type All struct {
	Specs []Specification
}

func (s All) Apply(db *gorm.DB) *gorm.DB {
	for _, spec := range s.Specs {
		db = spec.Apply(db)
	}
	return db
}

// Any combines specifications with OR. An empty list matches everything.
type Any struct {
	Specs []Specification
}

func (s Any) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Specs) == 0 {
		return db
	}
	fresh := func() *gorm.DB {
		return db.Session(&gorm.Session{NewDB: true})
	}
	combined := s.Specs[0].Apply(fresh())
	for _, spec := range s.Specs[1:] {
		combined = combined.Or(spec.Apply(fresh()))
	}
	return db.Where(combined)
}
