package services

import (
	"context"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/repository"
)

// TableService provides business logic for registered tables.
type TableService interface {
	List(ctx context.Context, databaseID uint, name string, page, perPage int) (*Page, error)
	GetByID(ctx context.Context, id uint) (*models.Table, error)
	Create(ctx context.Context, data models.Table) (*models.Table, error)
	Update(ctx context.Context, id uint, data models.Table) (*models.Table, error)
	Delete(ctx context.Context, id uint) error
}

type tableService struct {
	tableRepo    repository.TableRepository
	databaseRepo repository.DatabaseRepository
	columnRepo   repository.ColumnRepository
	baseRepo     repository.BaseRepository
}

// NewTableService creates a new table service instance.
func NewTableService() TableService {
	return &tableService{
		tableRepo:    repository.NewTableRepository(),
		databaseRepo: repository.NewDatabaseRepository(),
		columnRepo:   repository.NewColumnRepository(),
		baseRepo:     repository.NewBaseRepository(),
	}
}

// NewTableServiceWithDeps creates a service instance with injected
// repositories. Used for testing.
func NewTableServiceWithDeps(
	tableRepo repository.TableRepository,
	databaseRepo repository.DatabaseRepository,
	columnRepo repository.ColumnRepository,
	baseRepo repository.BaseRepository,
) TableService {
	return &tableService{
		tableRepo:    tableRepo,
		databaseRepo: databaseRepo,
		columnRepo:   columnRepo,
		baseRepo:     baseRepo,
	}
}

func (s *tableService) List(ctx context.Context, databaseID uint, name string, page, perPage int) (*Page, error) {
	page, perPage = NormalizePageParams(page, perPage)
	tables, total, err := s.tableRepo.List(nil, databaseID, name, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return NewPage(page, perPage, total, tables), nil
}

func (s *tableService) GetByID(ctx context.Context, id uint) (*models.Table, error) {
	table, err := s.tableRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("table_not_found").WithCause(err)
	}
	return table, nil
}

func (s *tableService) Create(ctx context.Context, data models.Table) (*models.Table, error) {
	if _, err := s.databaseRepo.GetByID(nil, data.DatabaseID); err != nil {
		return nil, apperror.NotFound("database_not_found").WithCause(err)
	}
	if err := s.checkUnique(data.DatabaseID, data.Name, 0); err != nil {
		return nil, err
	}

	data.Anonymized = false
	if err := s.tableRepo.Create(nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *tableService) Update(ctx context.Context, id uint, data models.Table) (*models.Table, error) {
	table, err := s.tableRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("table_not_found").WithCause(err)
	}
	// Renaming a table while its anonymized clone exists would orphan the
	// clone; the clone is addressed by table name inside the store database.
	if table.Anonymized {
		return nil, apperror.Conflict("table_already_anonymized")
	}
	if err := s.checkUnique(table.DatabaseID, data.Name, id); err != nil {
		return nil, err
	}

	table.Name = data.Name
	if err := s.tableRepo.Update(nil, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) Delete(ctx context.Context, id uint) error {
	table, err := s.tableRepo.GetByID(nil, id)
	if err != nil {
		return apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Anonymized {
		return apperror.Conflict("table_already_anonymized")
	}

	// A table takes its declared columns with it, in one transaction.
	tx := s.baseRepo.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := s.columnRepo.DeleteByTableID(tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.tableRepo.Delete(tx, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (s *tableService) checkUnique(databaseID uint, name string, excludeID uint) error {
	count, err := s.tableRepo.CountByDatabaseIDAndName(nil, databaseID, name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("table_already_exist")
	}
	return nil
}
