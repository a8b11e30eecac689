package models

// Tag is a global label shared across all users. Entries reference tags
// by ID; the name keeps the casing it was first created with.
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(255)" validate:"required"`
}
