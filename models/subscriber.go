package models

// Subscriber is the Kamailio SIP digest-auth table. Kamailio owns the
// schema; we only insert/delete rows so the proxy can authenticate the
// user's SIP REGISTER.
type Subscriber struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:64;uniqueIndex:idx_subscriber_user_domain"`
	Domain   string `gorm:"size:64;uniqueIndex:idx_subscriber_user_domain"`
	Password string `gorm:"size:64"` // unused, digest auth relies on ha1
	HA1      string `gorm:"column:ha1;size:64"`
	HA1B     string `gorm:"column:ha1b;size:64"`
}

func (Subscriber) TableName() string { return "subscriber" }
