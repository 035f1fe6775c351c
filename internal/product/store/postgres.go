package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
	txcontext "leadhub/pkg/platform/tx"
)

const (
	productsTable = "products"
	sourcesTable  = "sources"
)

var (
	productColumns = []string{"p_id", "p_name", "deduplication_fields", "created_at", "updated_at"}
	sourceColumns  = []string{"source_id", "source_name", "p_id", "columns", "created_at", "updated_at"}
)

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execer(ctx context.Context, db *sql.DB) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// ProductPostgres persists products in PostgreSQL.
type ProductPostgres struct {
	db *sql.DB
}

func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

func (s *ProductPostgres) Save(ctx context.Context, product *models.Product) error {
	fields := product.DeduplicationFields
	if fields == nil {
		fields = []id.IdentifierField{}
	}
	dedupFields, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal deduplication fields: %w", err)
	}
	query, args, err := squirrel.Insert(productsTable).
		Columns(productColumns...).
		Values(string(product.PID), product.PName, dedupFields, product.CreatedAt, product.UpdatedAt).
		Suffix(`ON CONFLICT (p_id) DO UPDATE SET
			p_name = EXCLUDED.p_name,
			deduplication_fields = EXCLUDED.deduplication_fields,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save product query: %w", err)
	}
	if _, err := execer(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (s *ProductPostgres) FindByPID(ctx context.Context, pID id.ProductID) (*models.Product, error) {
	products, err := s.query(ctx, selectProducts().Where(squirrel.Eq{"p_id": string(pID)}), "find product")
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return products[0], nil
}

func (s *ProductPostgres) ExistsByPID(ctx context.Context, pID id.ProductID) (bool, error) {
	var exists bool
	err := execer(ctx, s.db).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+productsTable+" WHERE p_id = $1)", string(pID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func (s *ProductPostgres) FindAll(ctx context.Context) ([]*models.Product, error) {
	return s.query(ctx, selectProducts(), "find all products")
}

func (s *ProductPostgres) Delete(ctx context.Context, pID id.ProductID) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, "DELETE FROM "+productsTable+" WHERE p_id = $1", string(pID))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res, "delete product")
}

func selectProducts() squirrel.SelectBuilder {
	return squirrel.Select(productColumns...).
		From(productsTable).
		OrderBy("created_at", "p_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (s *ProductPostgres) query(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]*models.Product, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		var (
			p           models.Product
			pID         string
			dedupFields []byte
		)
		if err := rows.Scan(&pID, &p.PName, &dedupFields, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.PID = id.ProductID(pID)
		if len(dedupFields) > 0 {
			if err := json.Unmarshal(dedupFields, &p.DeduplicationFields); err != nil {
				return nil, fmt.Errorf("unmarshal deduplication fields: %w", err)
			}
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// SourcePostgres persists sources in PostgreSQL.
type SourcePostgres struct {
	db *sql.DB
}

func NewSourcePostgres(db *sql.DB) *SourcePostgres {
	return &SourcePostgres{db: db}
}

func (s *SourcePostgres) Save(ctx context.Context, source *models.Source) error {
	cols := source.Columns
	if cols == nil {
		cols = []string{}
	}
	columns, err := json.Marshal(cols)
	if err != nil {
		return fmt.Errorf("marshal source columns: %w", err)
	}
	query, args, err := squirrel.Insert(sourcesTable).
		Columns(sourceColumns...).
		Values(string(source.SourceID), source.SourceName, string(source.PID), columns, source.CreatedAt, source.UpdatedAt).
		Suffix(`ON CONFLICT (source_id) DO UPDATE SET
			source_name = EXCLUDED.source_name,
			p_id = EXCLUDED.p_id,
			columns = EXCLUDED.columns,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save source query: %w", err)
	}
	if _, err := execer(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save source: %w", err)
	}
	return nil
}

func (s *SourcePostgres) FindByID(ctx context.Context, sourceID id.SourceID) (*models.Source, error) {
	sources, err := s.query(ctx, selectSources().Where(squirrel.Eq{"source_id": string(sourceID)}), "find source")
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return sources[0], nil
}

func (s *SourcePostgres) ExistsByID(ctx context.Context, sourceID id.SourceID) (bool, error) {
	var exists bool
	err := execer(ctx, s.db).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+sourcesTable+" WHERE source_id = $1)", string(sourceID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check source exists: %w", err)
	}
	return exists, nil
}

func (s *SourcePostgres) FindAll(ctx context.Context) ([]*models.Source, error) {
	return s.query(ctx, selectSources(), "find all sources")
}

func (s *SourcePostgres) FindByPID(ctx context.Context, pID id.ProductID) ([]*models.Source, error) {
	return s.query(ctx, selectSources().Where(squirrel.Eq{"p_id": string(pID)}), "find sources by product")
}

func (s *SourcePostgres) CountByPID(ctx context.Context, pID id.ProductID) (int, error) {
	var count int
	err := execer(ctx, s.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+sourcesTable+" WHERE p_id = $1", string(pID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sources by product: %w", err)
	}
	return count, nil
}

func (s *SourcePostgres) Delete(ctx context.Context, sourceID id.SourceID) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, "DELETE FROM "+sourcesTable+" WHERE source_id = $1", string(sourceID))
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return requireAffected(res, "delete source")
}

func selectSources() squirrel.SelectBuilder {
	return squirrel.Select(sourceColumns...).
		From(sourcesTable).
		OrderBy("created_at", "source_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (s *SourcePostgres) query(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]*models.Source, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	sources := []*models.Source{}
	for rows.Next() {
		var (
			src      models.Source
			sourceID string
			pID      string
			columns  []byte
		)
		if err := rows.Scan(&sourceID, &src.SourceName, &pID, &columns, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.SourceID = id.SourceID(sourceID)
		src.PID = id.ProductID(pID)
		if len(columns) > 0 {
			if err := json.Unmarshal(columns, &src.Columns); err != nil {
				return nil, fmt.Errorf("unmarshal source columns: %w", err)
			}
		}
		sources = append(sources, &src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sources, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
