package models

import "github.com/google/uuid"

// Category is a node in the catalog tree. Top-level categories have a nil
// parent. The tree is read-only from the storefront's point of view.
type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Description string     `json:"description,omitempty"`
}
