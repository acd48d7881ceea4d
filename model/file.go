package model

import "time"

// File is the metadata row for one stored ciphertext object. The handle is
// both the external identifier and the object key inside the owning bucket.
type File struct {
	ID uint64 `gorm:"primaryKey"`

	Handle string `gorm:"column:handle;size:36;uniqueIndex;not null" json:"handle,omitempty"`

	FileName string `gorm:"column:file_name;size:96;not null" json:"file_name,omitempty"`
	FileType string `gorm:"column:file_type;size:96;not null" json:"file_type,omitempty"`

	// Base64-encoded per-object key material. Generated once at ingestion,
	// never regenerated.
	Key   string `gorm:"column:key;size:44;not null" json:"-"`
	Nonce string `gorm:"column:nonce;size:16;not null" json:"-"`

	AvailableTill time.Time `gorm:"column:available_till;not null;index" json:"available_till"`
	DateCreated   time.Time `gorm:"column:date_created;not null;autoCreateTime" json:"date_created"`

	BucketID uint64 `gorm:"column:bucket_id;not null" json:"bucket_id,omitempty"`
	Bucket   Bucket `gorm:"foreignKey:BucketID;references:ID" json:"-"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
