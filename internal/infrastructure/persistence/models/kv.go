// Package models contains the GORM persistence models. They carry every ORM
// annotation so the domain packages stay free of them.
package models

import "time"

// KeyValueTable is the table backing the database storage backend
const KeyValueTable = "storefront_kv"

// KeyValueModel is one stored key. Value holds the encoded payload, for
// session identities the JSON {"id","name","email"} object.
type KeyValueModel struct {
	Key       string    `gorm:"column:id;primaryKey;size:255"`
	Value     string    `gorm:"column:value;type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (KeyValueModel) TableName() string {
	return KeyValueTable
}
