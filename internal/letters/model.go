package letters

import "time"

// Letter is a rich-text letter owned by a single user. Content is serialized
// HTML, sanitized before it reaches the repository. GoogleDocID is set once
// the letter has been exported to Google Docs.
type Letter struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	IsDraft     bool      `bson:"isDraft" json:"isDraft"`
	UserID      string    `bson:"userId" json:"userId"`
	GoogleDocID string    `bson:"googleDocId,omitempty" json:"googleDocId,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
