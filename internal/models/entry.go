package models

import "time"

// Entry is a user-owned note. TagIDs keeps the tag references exactly as
// resolved from the request: in input order, duplicates included.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	TagIDs    []string  `json:"tags" gorm:"column:tags;serializer:json;type:text"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
}

// TagRef is the expanded form of a tag reference used in listings.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EntryDetail is an Entry with its tag references expanded to id/name
// pairs. Only listings use this shape; create/update return the entry
// with bare tag IDs.
type EntryDetail struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	Tags      []TagRef  `json:"tags"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
