package postgres

import (
	"context"
	"errors"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"

	"gorm.io/gorm"
)

// UserRepository reads guardrail attributes from the CRM-owned "users" table.
type UserRepository struct {
	DB *gorm.DB
}

// Compile-time check that the struct implements the interface.
var _ bandit.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

// GetUser returns ok=false for unknown users; the engine then treats them as
// carrying no restrictions.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (domain.User, bool, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}

	return user, true, nil
}

