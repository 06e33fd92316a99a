package services

import (
	"context"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/repository"
)

// DatabaseService provides business logic for registered database connections.
type DatabaseService interface {
	List(ctx context.Context, filter repository.DatabaseFilter, page, perPage int) (*Page, error)
	GetByID(ctx context.Context, id uint) (*models.Database, error)
	Create(ctx context.Context, data models.Database) (*models.Database, error)
	Update(ctx context.Context, id uint, data models.Database) (*models.Database, error)
	Delete(ctx context.Context, id uint) error
}

type databaseService struct {
	databaseRepo      repository.DatabaseRepository
	userRepo          repository.UserRepository
	validDatabaseRepo repository.ValidDatabaseRepository
}

// NewDatabaseService creates a new database service instance.
func NewDatabaseService() DatabaseService {
	return &databaseService{
		databaseRepo:      repository.NewDatabaseRepository(),
		userRepo:          repository.NewUserRepository(),
		validDatabaseRepo: repository.NewValidDatabaseRepository(),
	}
}

// NewDatabaseServiceWithDeps creates a service instance with injected
// repositories. Used for testing.
func NewDatabaseServiceWithDeps(
	databaseRepo repository.DatabaseRepository,
	userRepo repository.UserRepository,
	validDatabaseRepo repository.ValidDatabaseRepository,
) DatabaseService {
	return &databaseService{
		databaseRepo:      databaseRepo,
		userRepo:          userRepo,
		validDatabaseRepo: validDatabaseRepo,
	}
}

func (s *databaseService) List(ctx context.Context, filter repository.DatabaseFilter, page, perPage int) (*Page, error) {
	page, perPage = NormalizePageParams(page, perPage)
	databases, total, err := s.databaseRepo.List(nil, filter, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return NewPage(page, perPage, total, databases), nil
}

func (s *databaseService) GetByID(ctx context.Context, id uint) (*models.Database, error) {
	database, err := s.databaseRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("database_not_found").WithCause(err)
	}
	return database, nil
}

func (s *databaseService) Create(ctx context.Context, data models.Database) (*models.Database, error) {
	if _, err := s.userRepo.GetByID(nil, data.UserID); err != nil {
		return nil, apperror.NotFound("user_not_found").WithCause(err)
	}
	if _, err := s.validDatabaseRepo.GetByID(nil, data.ValidDatabaseID); err != nil {
		return nil, apperror.NotFound("valid_database_not_found").WithCause(err)
	}
	if err := s.checkUnique(data, 0); err != nil {
		return nil, err
	}

	if err := s.databaseRepo.Create(nil, &data); err != nil {
		return nil, err
	}
	logger.Infof("Registered database %s@%s:%d/%s (id=%d)", data.Username, data.Host, data.Port, data.Name, data.ID)
	return &data, nil
}

func (s *databaseService) Update(ctx context.Context, id uint, data models.Database) (*models.Database, error) {
	database, err := s.databaseRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("database_not_found").WithCause(err)
	}
	if _, err := s.validDatabaseRepo.GetByID(nil, data.ValidDatabaseID); err != nil {
		return nil, apperror.NotFound("valid_database_not_found").WithCause(err)
	}
	if err := s.checkUnique(data, id); err != nil {
		return nil, err
	}

	database.ValidDatabaseID = data.ValidDatabaseID
	database.Username = data.Username
	database.Password = data.Password
	database.Host = data.Host
	database.Port = data.Port
	database.Name = data.Name

	if err := s.databaseRepo.Update(nil, database); err != nil {
		return nil, err
	}
	return database, nil
}

func (s *databaseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.databaseRepo.GetByID(nil, id); err != nil {
		return apperror.NotFound("database_not_found").WithCause(err)
	}
	return s.databaseRepo.Delete(nil, id)
}

func (s *databaseService) checkUnique(data models.Database, excludeID uint) error {
	count, err := s.databaseRepo.CountByCoordinates(nil, data.Username, data.Host, data.Port, data.Name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("database_already_exist")
	}
	return nil
}
