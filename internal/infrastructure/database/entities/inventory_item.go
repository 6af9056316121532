package entities

import "time"

// InventoryItem is the owning side of the weak item -> file reference. Only
// the columns the media service reads are mapped; the admin console owns the
// rest of the table.
type InventoryItem struct {
	ID          string  `gorm:"type:varchar(64);primaryKey"`
	ItemNumber  string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	ConsignorID *string `gorm:"type:varchar(64);index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
