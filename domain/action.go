package domain

import "fmt"

// ActionKey identifies one arm: an offer sent over a channel through a partner.
type ActionKey struct {
	OfferID string `json:"offer_id"`
	Channel string `json:"channel"`
	Partner string `json:"partner"`
}

func (k ActionKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.OfferID, k.Channel, k.Partner)
}

func (k ActionKey) IsZero() bool {
	return k == ActionKey{}
}

// Action is a catalog entry.
type Action struct {
	OfferID        string `gorm:"column:offer_id;primaryKey" json:"offer_id"`
	Channel        string `gorm:"column:channel;primaryKey" json:"channel"`
	Partner        string `gorm:"column:partner;primaryKey" json:"partner"`
	Incentive      bool   `gorm:"column:incentive;default:false" json:"incentive"`
	MinCreditScore int    `gorm:"column:min_credit_score;default:0" json:"min_credit_score"`
	Active         bool   `gorm:"column:active;not null" json:"active"`
}

func (Action) TableName() string {
	return "actions"
}

func (a Action) Key() ActionKey {
	return ActionKey{OfferID: a.OfferID, Channel: a.Channel, Partner: a.Partner}
}
