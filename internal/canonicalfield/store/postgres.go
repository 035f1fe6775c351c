package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"leadhub/internal/canonicalfield/models"
	"leadhub/internal/platform/postgres"
	"leadhub/pkg/platform/sentinel"
	txcontext "leadhub/pkg/platform/tx"
)

const fieldsTable = "canonical_fields"

var fieldColumns = []string{
	"field_name", "display_name", "field_type", "is_active", "is_required", "version", "created_at",
}

// PostgresStore persists canonical fields in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed canonical field store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, field *models.CanonicalField) error {
	query, args, err := squirrel.Insert(fieldsTable).
		Columns(fieldColumns...).
		Values(field.FieldName, field.DisplayName, string(field.FieldType),
			field.IsActive, field.IsRequired, field.Version, field.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create canonical field query: %w", err)
	}
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create canonical field: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.CanonicalField, error) {
	query, args, err := selectFields().Where(squirrel.Eq{"field_name": name}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find canonical field query: %w", err)
	}
	var f models.CanonicalField
	var fieldType string
	err = s.execer(ctx).QueryRowContext(ctx, query, args...).
		Scan(&f.FieldName, &f.DisplayName, &fieldType, &f.IsActive, &f.IsRequired, &f.Version, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find canonical field: %w", err)
	}
	f.FieldType = models.FieldType(fieldType)
	return &f, nil
}

func (s *PostgresStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+fieldsTable+" WHERE field_name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check canonical field exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.CanonicalField, error) {
	return s.query(ctx, selectFields(), "find all canonical fields")
}

func (s *PostgresStore) FindActive(ctx context.Context) ([]*models.CanonicalField, error) {
	return s.query(ctx, selectFields().Where(squirrel.Eq{"is_active": true}), "find active canonical fields")
}

func selectFields() squirrel.SelectBuilder {
	return squirrel.Select(fieldColumns...).
		From(fieldsTable).
		OrderBy("field_name").
		PlaceholderFormat(squirrel.Dollar)
}

func (s *PostgresStore) query(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]*models.CanonicalField, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	fields := []*models.CanonicalField{}
	for rows.Next() {
		var f models.CanonicalField
		var fieldType string
		if err := rows.Scan(&f.FieldName, &f.DisplayName, &fieldType, &f.IsActive, &f.IsRequired, &f.Version, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan canonical field: %w", err)
		}
		f.FieldType = models.FieldType(fieldType)
		fields = append(fields, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return fields, nil
}
