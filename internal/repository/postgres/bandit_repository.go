package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BanditRepository persists beliefs and the decision log.
type BanditRepository struct {
	DB *gorm.DB
}

var (
	_ bandit.BeliefRepository   = (*BanditRepository)(nil)
	_ bandit.DecisionRepository = (*BanditRepository)(nil)
)

func NewBanditRepository(db *gorm.DB) *BanditRepository {
	return &BanditRepository{DB: db}
}

// ---- Beliefs ----

func (r *BanditRepository) LoadBeliefs(ctx context.Context) ([]domain.BeliefParameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.BeliefParameters
	if err := r.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load belief_parameters: %w", err)
	}
	return rows, nil
}

// IncrementBelief adds dAlpha/dBeta to a belief in one statement. A missing
// row is inserted at prior + delta, so concurrent writers never lose updates.
func (r *BanditRepository) IncrementBelief(
	ctx context.Context,
	userID string,
	action domain.ActionKey,
	dAlpha, dBeta, priorAlpha, priorBeta float64,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	row := domain.BeliefParameters{
		UserID:    userID,
		OfferID:   action.OfferID,
		Channel:   action.Channel,
		Partner:   action.Partner,
		Alpha:     priorAlpha + dAlpha,
		Beta:      priorBeta + dBeta,
		UpdatedAt: now,
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: beliefKeyColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"alpha":      gorm.Expr("belief_parameters.alpha + ?", dAlpha),
				"beta":       gorm.Expr("belief_parameters.beta + ?", dBeta),
				"updated_at": now,
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment belief: %w", err)
	}
	return nil
}

func (r *BanditRepository) ResetBelief(
	ctx context.Context,
	userID string,
	action domain.ActionKey,
	priorAlpha, priorBeta float64,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := domain.BeliefParameters{
		UserID:    userID,
		OfferID:   action.OfferID,
		Channel:   action.Channel,
		Partner:   action.Partner,
		Alpha:     priorAlpha,
		Beta:      priorBeta,
		UpdatedAt: time.Now(),
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   beliefKeyColumns,
			DoUpdates: clause.AssignmentColumns([]string{"alpha", "beta", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to reset belief: %w", err)
	}
	return nil
}

var beliefKeyColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "offer_id"},
	{Name: "channel"},
	{Name: "partner"},
}

// ---- Decisions ----

// SaveDecision is idempotent on the decision id so retries are safe.
func (r *BanditRepository) SaveDecision(ctx context.Context, d domain.Decision) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&d).Error
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// UpdateOutcome moves a pending decision to outcome. It only ever touches
// pending rows; a terminal row yields bandit.ErrAlreadyRecorded.
func (r *BanditRepository) UpdateOutcome(ctx context.Context, id string, outcome domain.Outcome, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	res := r.DB.WithContext(ctx).
		Model(&domain.Decision{}).
		Where("id = ? AND outcome = ?", id, domain.OutcomePending).
		Updates(map[string]any{
			"outcome":    outcome,
			"outcome_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update outcome: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var existing domain.Decision
	err := r.DB.WithContext(ctx).Select("id", "outcome").First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bandit.ErrDecisionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query decision: %w", err)
	}
	return bandit.ErrAlreadyRecorded
}

func (r *BanditRepository) LoadDecisions(ctx context.Context) ([]domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Decision
	if err := r.DB.WithContext(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load decisions: %w", err)
	}
	return rows, nil
}
