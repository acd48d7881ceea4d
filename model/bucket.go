package model

// Bucket is one provisioned object-storage backend. Rows are created out of
// band; the engine only ever reads them.
type Bucket struct {
	ID uint64 `gorm:"primaryKey"`

	BucketName string `gorm:"column:bucket_name;size:64;not null" json:"bucket_name,omitempty"`
	Region     string `gorm:"column:region;size:64;not null" json:"region,omitempty"`
	Endpoint   string `gorm:"column:endpoint;size:256;not null" json:"endpoint,omitempty"`
	AccessKey  string `gorm:"column:access_key;size:1028;not null" json:"-"`
	SecretKey  string `gorm:"column:secret_key;size:1028;not null" json:"-"`
}

// TableName returns the database table name.
func (Bucket) TableName() string {
	return "buckets"
}
