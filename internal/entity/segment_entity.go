package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentSegment is one indexed chunk of a document. Answer is set only for
// Q&A style segments; retrieval renders those as a question/answer pair.
type DocumentSegment struct {
	Id            uuid.UUID
	CollectionId  uuid.UUID
	DocumentId    uuid.UUID
	Position      int
	Content       string
	Answer        string
	WordCount     int
	HitCount      int
	IndexNodeHash string
	Embedding     []float32
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
