package services

import (
	"context"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/pkg/synth"
	"dataprotectionapi/repository"
)

// ColumnService provides business logic for declared sensitive columns.
type ColumnService interface {
	List(ctx context.Context, tableID uint, name string, page, perPage int) (*Page, error)
	GetByID(ctx context.Context, id uint) (*models.Column, error)
	Create(ctx context.Context, data models.Column) (*models.Column, error)
	Update(ctx context.Context, id uint, data models.Column) (*models.Column, error)
	Delete(ctx context.Context, id uint) error
}

type columnService struct {
	columnRepo repository.ColumnRepository
	tableRepo  repository.TableRepository
}

// NewColumnService creates a new column service instance.
func NewColumnService() ColumnService {
	return &columnService{
		columnRepo: repository.NewColumnRepository(),
		tableRepo:  repository.NewTableRepository(),
	}
}

// NewColumnServiceWithDeps creates a service instance with injected
// repositories. Used for testing.
func NewColumnServiceWithDeps(columnRepo repository.ColumnRepository, tableRepo repository.TableRepository) ColumnService {
	return &columnService{
		columnRepo: columnRepo,
		tableRepo:  tableRepo,
	}
}

func (s *columnService) List(ctx context.Context, tableID uint, name string, page, perPage int) (*Page, error) {
	page, perPage = NormalizePageParams(page, perPage)
	columns, total, err := s.columnRepo.List(nil, tableID, name, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return NewPage(page, perPage, total, columns), nil
}

func (s *columnService) GetByID(ctx context.Context, id uint) (*models.Column, error) {
	column, err := s.columnRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("column_not_found").WithCause(err)
	}
	return column, nil
}

func (s *columnService) Create(ctx context.Context, data models.Column) (*models.Column, error) {
	table, err := s.tableRepo.GetByID(nil, data.TableID)
	if err != nil {
		return nil, apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Anonymized {
		return nil, apperror.Conflict("table_already_anonymized")
	}
	if !synth.IsValidCategory(data.AnonymizationType) {
		return nil, apperror.Validation("invalid_anonymization_type")
	}
	if err := s.checkUnique(data.TableID, data.Name, 0); err != nil {
		return nil, err
	}

	if err := s.columnRepo.Create(nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *columnService) Update(ctx context.Context, id uint, data models.Column) (*models.Column, error) {
	column, err := s.columnRepo.GetByID(nil, id)
	if err != nil {
		return nil, apperror.NotFound("column_not_found").WithCause(err)
	}
	table, err := s.tableRepo.GetByID(nil, column.TableID)
	if err != nil {
		return nil, apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Anonymized {
		return nil, apperror.Conflict("table_already_anonymized")
	}
	if !synth.IsValidCategory(data.AnonymizationType) {
		return nil, apperror.Validation("invalid_anonymization_type")
	}
	if err := s.checkUnique(column.TableID, data.Name, id); err != nil {
		return nil, err
	}

	column.Name = data.Name
	column.AnonymizationType = data.AnonymizationType
	if err := s.columnRepo.Update(nil, column); err != nil {
		return nil, err
	}
	return column, nil
}

func (s *columnService) Delete(ctx context.Context, id uint) error {
	column, err := s.columnRepo.GetByID(nil, id)
	if err != nil {
		return apperror.NotFound("column_not_found").WithCause(err)
	}
	table, err := s.tableRepo.GetByID(nil, column.TableID)
	if err != nil {
		return apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Anonymized {
		return apperror.Conflict("table_already_anonymized")
	}
	return s.columnRepo.Delete(nil, id)
}

func (s *columnService) checkUnique(tableID uint, name string, excludeID uint) error {
	count, err := s.columnRepo.CountByTableIDAndName(nil, tableID, name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("column_already_exist")
	}
	return nil
}
