package entities

import "time"

// PublishJob represents one row of asynchronous variant-generation work.
// Rows are inserted by a database trigger on source file creation and
// mutated by the external publish worker; this service reads them.
type PublishJob struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	FileID       string  `gorm:"type:varchar(40);index;not null"`
	AssetGroupID string  `gorm:"type:varchar(40);index;not null"`
	Status       string  `gorm:"type:varchar(16);not null;default:pending;index"`
	Priority     int     `gorm:"not null;default:0"`
	RetryCount   int     `gorm:"not null;default:0"`
	MaxRetries   int     `gorm:"not null;default:3"`
	ErrorMessage *string `gorm:"type:text"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (PublishJob) TableName() string {
	return "publish_jobs"
}
