package services

import (
	"context"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/repository"
)

// UserService provides business logic for user accounts.
type UserService interface {
	List(ctx context.Context, name string, page, perPage int) (*Page, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, data models.User) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service instance.
func NewUserService() UserService {
	return &userService{
		userRepo: repository.NewUserRepository(),
	}
}

// NewUserServiceWithDeps creates a service instance with an injected
// repository. Used for testing.
func NewUserServiceWithDeps(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, name string, page, perPage int) (*Page, error) {
	page, perPage = NormalizePageParams(page, perPage)
	users, total, err := s.userRepo.List(nil, name, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return NewPage(page, perPage, total, users), nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("user_not_found").WithCause(err)
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, data models.User) (*models.User, error) {
	count, err := s.userRepo.CountByName(nil, data.Name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict("user_already_exist")
	}

	if err := s.userRepo.Create(nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(nil, id); err != nil {
		return apperror.NotFound("user_not_found").WithCause(err)
	}
	return s.userRepo.Delete(nil, id)
}
