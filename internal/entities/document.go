package entities

import "time"

// DocumentRecord is the relational row backing one catalog document when the
// SQLite record store is in use. Data holds the document fields as a JSON object.
type DocumentRecord struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:64"`
	Version    int64     `gorm:"not null;default:1"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}
