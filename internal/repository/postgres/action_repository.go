package postgres

import (
	"context"
	"fmt"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActionRepository struct {
	DB *gorm.DB
}

var _ bandit.ActionRepository = (*ActionRepository)(nil)

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{DB: db}
}

func (r *ActionRepository) ListActions(ctx context.Context) ([]domain.Action, error) {
	var actions []domain.Action
	err := r.DB.WithContext(ctx).
		Order("offer_id, channel, partner").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}

func (r *ActionRepository) UpsertActions(ctx context.Context, actions []domain.Action) error {
	if len(actions) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "offer_id"}, {Name: "channel"}, {Name: "partner"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"incentive",
				"min_credit_score",
				"active",
			}),
		}).
		Create(&actions).Error
}
