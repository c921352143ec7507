package specification

import (
	"gorm.io/gorm"
)

// Predicates over the documents.doc_metadata JSONB bag. These are the
// compilation targets of the metadata condition compiler: one small
// specification per comparison family, each parameterized and safe to
// combine with All/Any.

// metadataNumericExpr renders the metadata value as float8, yielding SQL NULL
// (so any comparison is false) when the stored value is not numeric.
const metadataNumericExpr = `CASE WHEN documents.doc_metadata ->> ? ~ '^-?[0-9]+(\.[0-9]+)?$' THEN (documents.doc_metadata ->> ?)::float8 END`

// MetadataLike matches the metadata value rendered as text against a LIKE
// pattern. The caller builds the pattern (%v%, v%, %v).
type MetadataLike struct {
	Field   string
	Pattern string
}

func (s MetadataLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata ->> ? LIKE ?", s.Field, s.Pattern)
}

// MetadataNotLike is the negation of MetadataLike.
type MetadataNotLike struct {
	Field   string
	Pattern string
}

func (s MetadataNotLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata ->> ? NOT LIKE ?", s.Field, s.Pattern)
}

// MetadataEqualsText compares the raw JSON value against the quoted string,
// so "42" (string) never equals 42 (number).
type MetadataEqualsText struct {
	Field string
	Value string
}

func (s MetadataEqualsText) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata -> ? = to_jsonb(?::text)", s.Field, s.Value)
}

// MetadataNotEqualsText is the negation of MetadataEqualsText.
type MetadataNotEqualsText struct {
	Field string
	Value string
}

func (s MetadataNotEqualsText) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata -> ? != to_jsonb(?::text)", s.Field, s.Value)
}

// MetadataEqualsNumber compares the metadata value cast to float8.
type MetadataEqualsNumber struct {
	Field string
	Value float64
}

func (s MetadataEqualsNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(metadataNumericExpr+" = ?", s.Field, s.Field, s.Value)
}

// MetadataNotEqualsNumber is the negation of MetadataEqualsNumber.
type MetadataNotEqualsNumber struct {
	Field string
	Value float64
}

func (s MetadataNotEqualsNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(metadataNumericExpr+" != ?", s.Field, s.Field, s.Value)
}

// MetadataAbsent matches documents whose metadata bag has no value for the
// field (missing key or JSON null).
type MetadataAbsent struct {
	Field string
}

func (s MetadataAbsent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata -> ? IS NULL", s.Field)
}

// MetadataPresent is the negation of MetadataAbsent.
type MetadataPresent struct {
	Field string
}

func (s MetadataPresent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("documents.doc_metadata -> ? IS NOT NULL", s.Field)
}

// MetadataCompareNumber applies an ordered numeric comparison. Comparator is
// restricted by the compiler to <, >, <= and >=.
type MetadataCompareNumber struct {
	Field      string
	Comparator string
	Value      float64
}

func (s MetadataCompareNumber) Apply(db *gorm.DB) *gorm.DB {
	switch s.Comparator {
	case "<", ">", "<=", ">=":
		return db.Where(metadataNumericExpr+" "+s.Comparator+" ?", s.Field, s.Field, s.Value)
	default:
		return db
	}
}
