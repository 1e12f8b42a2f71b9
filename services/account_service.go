package services

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/louismrng/veil-backend/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountService creates and removes user accounts across the three
// stores that know about a user: ejabberd (XMPP auth), the Kamailio
// subscriber table (SIP digest auth), and the push registry.
type AccountService struct {
	db       *gorm.DB
	registry *Registry
	ejabberd *EjabberdClient
	domain   string
}

func NewAccountService(db *gorm.DB, registry *Registry, ejabberd *EjabberdClient, domain string) *AccountService {
	return &AccountService{db: db, registry: registry, ejabberd: ejabberd, domain: domain}
}

// Register creates the XMPP account and the SIP subscriber row, and
// returns the new bare JID.
func (s *AccountService) Register(username, password string) (string, error) {
	username = strings.ToLower(username)
	if err := s.ejabberd.Register(username, s.domain, password); err != nil {
		return "", err
	}
	if err := s.upsertSubscriber(username, password); err != nil {
		// SIP calling degrades but the account exists; don't fail the signup.
		log.Error().Err(err).Str("username", username).
			Msg("failed to insert Kamailio subscriber")
	}
	return username + "@" + s.domain, nil
}

// Login validates credentials against ejabberd and refreshes the
// subscriber row so SIP digest auth keeps working after password
// changes made elsewhere.
func (s *AccountService) Login(username, password string) (string, error) {
	username = strings.ToLower(username)
	if err := s.ejabberd.CheckPassword(username, s.domain, password); err != nil {
		return "", err
	}
	if err := s.upsertSubscriber(username, password); err != nil {
		log.Error().Err(err).Str("username", username).
			Msg("failed to upsert Kamailio subscriber")
	}
	return username + "@" + s.domain, nil
}

// Delete removes the account and everything attached to it: push
// registrations, the subscriber row, and the ejabberd user record. The
// caller's password is re-checked as confirmation.
func (s *AccountService) Delete(jid, password string) error {
	username := strings.SplitN(jid, "@", 2)[0]
	if err := s.ejabberd.CheckPassword(username, s.domain, password); err != nil {
		return err
	}

	if err := s.registry.RemoveAllForJID(jid); err != nil {
		return err
	}
	if err := s.db.
		Where("username = ? AND domain = ?", username, s.domain).
		Delete(&models.Subscriber{}).Error; err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	// Ejabberd keeps its account rows in its own `users` table when on
	// SQL auth. Best effort: absent with internal auth.
	if err := s.db.Exec("DELETE FROM users WHERE username = ?", username).Error; err != nil {
		log.Warn().Err(err).Str("username", username).
			Msg("could not remove ejabberd user row")
	}
	return nil
}

// upsertSubscriber writes the Kamailio digest-auth hashes. The digest
// scheme is fixed by Kamailio: ha1 = md5(user:realm:pass),
// ha1b = md5(user@realm:realm:pass).
func (s *AccountService) upsertSubscriber(username, password string) error {
	ha1 := md5hex(fmt.Sprintf("%s:%s:%s", username, s.domain, password))
	ha1b := md5hex(fmt.Sprintf("%s@%s:%s:%s", username, s.domain, s.domain, password))

	sub := models.Subscriber{
		Username: username,
		Domain:   s.domain,
		HA1:      ha1,
		HA1B:     ha1b,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}, {Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"ha1", "ha1b"}),
	}).Create(&sub).Error
}

func md5hex(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}
