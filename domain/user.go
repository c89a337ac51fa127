package domain

import (
	"strings"
	"time"
)

// User is owned by the CRM side; the engine only reads it.
type User struct {
	ID               string     `gorm:"column:id;primaryKey" json:"id"`
	Segment          string     `gorm:"column:segment" json:"segment"`
	CreditScore      int        `gorm:"column:credit_score" json:"credit_score"`
	OptedOut         bool       `gorm:"column:opted_out;default:false" json:"opted_out"`
	DNDChannels      string     `gorm:"column:dnd_channels" json:"dnd_channels"` // comma separated
	NoIncentiveUntil *time.Time `gorm:"column:no_incentive_until" json:"no_incentive_until,omitempty"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

// BlocksChannel reports whether channel is on the user's do-not-disturb list.
func (u User) BlocksChannel(channel string) bool {
	if u.DNDChannels == "" {
		return false
	}
	for _, c := range strings.Split(u.DNDChannels, ",") {
		if strings.EqualFold(strings.TrimSpace(c), channel) {
			return true
		}
	}
	return false
}

// InNoIncentiveWindow reports whether incentive offers are barred at now.
func (u User) InNoIncentiveWindow(now time.Time) bool {
	return u.NoIncentiveUntil != nil && now.Before(*u.NoIncentiveUntil)
}
