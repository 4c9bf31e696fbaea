package model

import "time"

// Kind distinguishes the two node types harvested from a community.
type Kind string

const (
	KindThread  Kind = "thread"
	KindComment Kind = "comment"
)

// Record is one crawled unit: a thread or a comment. Records are written
// once to the corpus sink and never updated.
type Record struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id,omitempty"`
	ContainerID string    `json:"container_id"`
	Kind        Kind      `json:"kind"`
	Author      string    `json:"author,omitempty"`
	Score       int       `json:"score"`
	RawText     string    `json:"raw_text"`
	CreatedAt   time.Time `json:"created_at"`
	Depth       int       `json:"depth"`
}
