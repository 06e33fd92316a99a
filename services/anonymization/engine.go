package anonymization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dataprotectionapi/config"
	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/pkg/synth"
	"dataprotectionapi/repository"
	"dataprotectionapi/services/dbconn"
)

// Service orchestrates anonymization of registered tables: cloning the live
// table into the anonymized store, rewriting declared columns with
// deterministically seeded synthetic values, and reversing the whole
// operation.
type Service interface {
	// Anonymize clones the table into the anonymized store and rewrites its
	// declared columns. Strictly single-shot per table until reversed.
	Anonymize(ctx context.Context, tableID uint) error

	// Deanonymize copies the anonymized-store rows back into the source
	// table keyed by primary key, then drops the store clone.
	Deanonymize(ctx context.Context, tableID uint) error
}

type service struct {
	tableRepo  repository.TableRepository
	cloner     *Cloner
	open       Opener
	openServer Opener
	locks      *tableLocks
	batchSize  int
}

// NewService creates an anonymization service using real connections.
func NewService() Service {
	return &service{
		tableRepo:  repository.NewTableRepository(),
		cloner:     NewCloner(),
		open:       dbconn.Open,
		openServer: dbconn.OpenServer,
		locks:      newTableLocks(),
	}
}

// NewServiceWithDeps creates a service instance with injected dependencies.
// Used for testing to substitute the catalog repository and connections.
func NewServiceWithDeps(tableRepo repository.TableRepository, cloner *Cloner, open, openServer Opener, batchSize int) Service {
	return &service{
		tableRepo:  tableRepo,
		cloner:     cloner,
		open:       open,
		openServer: openServer,
		locks:      newTableLocks(),
		batchSize:  batchSize,
	}
}

func (s *service) effectiveBatchSize() int {
	if s.batchSize > 0 {
		return s.batchSize
	}
	if config.Cfg.CopyBatchSize > 0 {
		return config.Cfg.CopyBatchSize
	}
	return 100000
}

func (s *service) Anonymize(ctx context.Context, tableID uint) error {
	table, err := s.tableRepo.GetByIDWithRelations(nil, tableID)
	if err != nil {
		return apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Database == nil || table.Database.ValidDatabase == nil {
		return fmt.Errorf("table %d has no resolvable database connection", tableID)
	}
	// Nothing declared means nothing to rewrite; cloning would copy the
	// whole table verbatim into the store.
	if len(table.Columns) == 0 {
		return apperror.Validation("no_columns_declared")
	}

	unlock := s.locks.lock(tableID)
	defer unlock()

	source := dbconn.FromDatabase(table.Database)
	store := dbconn.AnonymizedStore(table.DatabaseID, source.Type)

	// Single-shot guard: a same-named table in the store means a previous
	// anonymization has not been reversed yet.
	anonymized, err := s.storeTableExists(ctx, store, table.Name)
	if err != nil {
		return err
	}
	if anonymized {
		return apperror.Conflict("table_already_anonymized")
	}

	declared := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		declared[i] = col.Name
	}

	logger.Infof("Anonymizing table %s (id=%d) with %d declared columns", table.Name, tableID, len(declared))
	if _, err := s.cloner.Clone(ctx, source, store, table.Name, declared); err != nil {
		return err
	}

	if err := s.rewrite(ctx, store, table); err != nil {
		return err
	}

	if err := s.tableRepo.SetAnonymized(nil, tableID, true); err != nil {
		return fmt.Errorf("failed to record anonymization status for table %d: %w", tableID, err)
	}
	logger.Infof("Anonymization of table %s (id=%d) completed", table.Name, tableID)
	return nil
}

// storeTableExists checks whether the anonymized store already holds a clone
// of the named table. A missing store database means no clone exists.
func (s *service) storeTableExists(ctx context.Context, store dbconn.Descriptor, tableName string) (bool, error) {
	server, err := s.openServer(ctx, store)
	if err != nil {
		return false, apperror.Unavailable("connection_unavailable", err)
	}
	defer server.Close()

	exists, err := dbconn.DatabaseExists(ctx, server, store)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	storeDB, err := s.open(ctx, store)
	if err != nil {
		return false, apperror.Unavailable("connection_unavailable", err)
	}
	defer storeDB.Close()

	return tableExists(ctx, storeDB, store.Type, tableName)
}

// rewrite re-reflects the freshly cloned store table and replaces every
// declared column of every row with a synthetic value, preserving the
// primary key. Rows are processed in ascending primary-key order, one batched
// update transaction per batch.
func (s *service) rewrite(ctx context.Context, store dbconn.Descriptor, table *models.Table) error {
	if len(table.Columns) == 0 {
		return nil
	}

	storeDB, err := s.open(ctx, store)
	if err != nil {
		return apperror.Unavailable("connection_unavailable", err)
	}
	defer storeDB.Close()

	declared := make([]string, len(table.Columns))
	categories := make(map[string]string, len(table.Columns))
	for i, col := range table.Columns {
		declared[i] = col.Name
		categories[col.Name] = col.AnonymizationType
	}

	info, err := Reflect(ctx, storeDB, store.Type, table.Name, declared)
	if err != nil {
		return err
	}

	columns := info.ColumnNames()
	pkIdx := indexOf(columns, info.PrimaryKey)
	if pkIdx < 0 {
		return fmt.Errorf("primary key %s missing from reflected columns of %s", info.PrimaryKey, info.Name)
	}
	declaredIdx := make([]int, len(declared))
	for i, name := range declared {
		declaredIdx[i] = indexOf(columns, name)
	}

	selectStmt := buildSelect(store.Type, info.Name, columns, info.PrimaryKey)
	updateStmt := buildUpdate(store.Type, info.Name, declared, info.PrimaryKey)

	rewritten := 0
	batches, err := streamBatches(ctx, storeDB, selectStmt, len(columns), s.effectiveBatchSize(),
		func(batchNo int, batch [][]interface{}) error {
			tx, err := storeDB.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to begin rewrite transaction: %w", err)
			}
			stmt, err := tx.PrepareContext(ctx, updateStmt)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to prepare rewrite: %w", err)
			}
			for _, row := range batch {
				pk := stringifyCell(row[pkIdx])
				args := make([]interface{}, 0, len(declared)+1)
				for i, name := range declared {
					seed := synth.SeedString(table.DatabaseID, table.ID, name, pk, stringifyCell(row[declaredIdx[i]]))
					value, err := synth.Generate(categories[name], seed)
					if err != nil {
						stmt.Close()
						tx.Rollback()
						return err
					}
					args = append(args, value)
				}
				args = append(args, row[pkIdx])
				if _, err := stmt.ExecContext(ctx, args...); err != nil {
					stmt.Close()
					tx.Rollback()
					return fmt.Errorf("failed to rewrite row %v: %w", pk, err)
				}
			}
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit rewrite batch %d: %w", batchNo, err)
			}
			rewritten += len(batch)
			return nil
		})
	if err != nil {
		return err
	}
	logger.Infof("Rewrote %d rows of %s in %d batches", rewritten, info.Name, batches)
	return nil
}

func buildUpdate(engineType, tableName string, setColumns []string, primaryKey string) string {
	sets := make([]string, len(setColumns))
	for i, col := range setColumns {
		sets[i] = dbconn.QuoteIdentifier(engineType, col) + " = " + dbconn.Placeholder(engineType, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		dbconn.QuoteIdentifier(engineType, tableName),
		strings.Join(sets, ", "),
		dbconn.QuoteIdentifier(engineType, primaryKey),
		dbconn.Placeholder(engineType, len(setColumns)+1))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// stringifyCell renders one scanned cell value for use in a seed string.
// Drivers report text-protocol values as byte slices; those become plain
// strings so the seed matches the cell's visible content.
func stringifyCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", t)
	}
}
