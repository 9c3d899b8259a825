package ds

import "time"

// Audit trail row, one per user-facing notification.
type AuditEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NotificationID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"notification_id"`
	Level          string    `gorm:"type:varchar(10);not null" json:"level"` // success, error
	Entity         string    `gorm:"type:varchar(30);index;not null" json:"entity"`
	Action         string    `gorm:"type:varchar(30);not null" json:"action"`
	Message        string    `gorm:"type:varchar(255);not null" json:"message"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}
