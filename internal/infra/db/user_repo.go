package db

import (
	"context"
	"errors"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	userID, ok := canonicalID(userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var model userModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapUserToDomain(model), nil
}

func mapUserToDomain(model userModel) *domain.User {
	plan := domain.Plan(model.Plan)
	if plan != domain.PlanPro {
		plan = domain.PlanFree
	}
	return &domain.User{
		ID:        model.ID,
		Email:     model.Email,
		Plan:      plan,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
