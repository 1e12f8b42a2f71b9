package models

import "time"

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// PushRegistration maps one (jid, device) pair to its current push
// destination. Re-registering the same pair replaces the token.
type PushRegistration struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	JID          string    `gorm:"column:jid;size:255;index;uniqueIndex:idx_push_jid_device" json:"jid"`
	DeviceID     string    `gorm:"size:64;uniqueIndex:idx_push_jid_device" json:"device_id"`
	Platform     string    `gorm:"size:16" json:"platform"` // "ios" | "android"
	PushToken    string    `gorm:"size:512;index" json:"-"`
	AppID        string    `gorm:"size:255" json:"app_id"`
	RegisteredAt time.Time `json:"registered_at"`
}
