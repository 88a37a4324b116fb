package user

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
)

// Service defines the interface for user business logic
type Service interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	Logout(ctx context.Context, id uint64) error
}

type DefaultService struct {
	repository UserRepository
}

func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, errors.Storage(err)
	}
	return user, nil
}

func (s *DefaultService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, errors.Storage(err)
	}
	return user, nil
}

// Logout bumps the token version so every outstanding token stops verifying.
func (s *DefaultService) Logout(ctx context.Context, id uint64) error {
	if err := s.repository.IncreaseTokenVersion(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return errors.NotFound("User not found", err)
		}
		return errors.Storage(err)
	}
	return nil
}
