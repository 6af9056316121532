package entities

import "time"

// MediaFile represents one persisted file variant row.
type MediaFile struct {
	ID            string  `gorm:"type:varchar(40);primaryKey"`
	ItemID        *string `gorm:"type:varchar(64);index"`
	AssetGroupID  string  `gorm:"type:varchar(40);index;not null"`
	Variant       string  `gorm:"type:varchar(16);not null"`
	SourceKey     *string `gorm:"type:varchar(255);index"`
	ProcessedKey  *string `gorm:"type:varchar(255)"`
	CDNUrl        *string `gorm:"type:varchar(512)"`
	OriginalName  string  `gorm:"type:varchar(255);not null"`
	SizeBytes     *int64
	MimeType      *string `gorm:"type:varchar(64)"`
	Width         *int
	Height        *int
	DurationSecs  *float64
	PublishStatus string     `gorm:"type:varchar(16);not null;default:pending"`
	Priority      int        `gorm:"not null;default:0"`
	UploadSource  string     `gorm:"type:varchar(32);not null;index"`
	DetachedAt    *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (MediaFile) TableName() string {
	return "auction_files"
}
