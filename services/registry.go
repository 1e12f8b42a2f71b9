package services

import (
	"fmt"
	"time"

	"github.com/louismrng/veil-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry is the durable (jid, device) → push token mapping. All
// operations are idempotent; the only errors it returns are storage
// failures.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Upsert registers a device token. A second registration for the same
// (jid, device_id) replaces the token, platform, and app id — last
// write wins, the token is the device's current address, not a log.
func (r *Registry) Upsert(jid, deviceID, platform, pushToken, appID string) error {
	reg := models.PushRegistration{
		JID:          jid,
		DeviceID:     deviceID,
		Platform:     platform,
		PushToken:    pushToken,
		AppID:        appID,
		RegisteredAt: time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "jid"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"platform", "push_token", "app_id", "registered_at"},
		),
	}).Create(&reg).Error
	if err != nil {
		return fmt.Errorf("upsert push registration: %w", err)
	}
	return nil
}

// Remove deletes one device's registration. Deleting a row that does
// not exist is not an error.
func (r *Registry) Remove(jid, deviceID string) error {
	err := r.db.
		Where("jid = ? AND device_id = ?", jid, deviceID).
		Delete(&models.PushRegistration{}).Error
	if err != nil {
		return fmt.Errorf("remove push registration: %w", err)
	}
	return nil
}

// RemoveByToken drops every registration holding the given token. The
// token is the key here because that is all a push service reports back
// when it declares a destination dead.
func (r *Registry) RemoveByToken(pushToken string) error {
	err := r.db.
		Where("push_token = ?", pushToken).
		Delete(&models.PushRegistration{}).Error
	if err != nil {
		return fmt.Errorf("remove push registration by token: %w", err)
	}
	return nil
}

// ListForJID returns all registrations for one identity, ordered by
// device id. Unknown identities yield an empty slice.
func (r *Registry) ListForJID(jid string) ([]models.PushRegistration, error) {
	var regs []models.PushRegistration
	err := r.db.
		Where("jid = ?", jid).
		Order("device_id").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("list push registrations: %w", err)
	}
	return regs, nil
}

// RemoveAllForJID clears every device for an identity. Called on
// account deletion.
func (r *Registry) RemoveAllForJID(jid string) error {
	err := r.db.
		Where("jid = ?", jid).
		Delete(&models.PushRegistration{}).Error
	if err != nil {
		return fmt.Errorf("remove push registrations for jid: %w", err)
	}
	return nil
}
