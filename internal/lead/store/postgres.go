package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
	txcontext "leadhub/pkg/platform/tx"
)

const leadsTable = "leads"

// leadColumns is the select list; the order must match leadRow.targets.
var leadColumns = []string{
	"lead_id", "name", "email", "phone_number", "aadhar_number", "source_id", "p_id",
	"sources_seen", "products_seen", "merged_from",
	"lead_score", "score_reason", "income", "credit_score", "employment_type", "loan_amount", "converted",
	"created_at", "updated_at",
}

// identifierColumns translates identifier fields to their column.
var identifierColumns = map[id.IdentifierField]string{
	id.IdentifierEmail:  "email",
	id.IdentifierPhone:  "phone_number",
	id.IdentifierAadhar: "aadhar_number",
}

// PostgresStore persists leads in PostgreSQL. Insertion order is kept by the
// table's seq column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed lead store.
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

func (s *PostgresStore) Save(ctx context.Context, lead *models.Lead) error {
	if lead == nil || lead.LeadID.IsNil() {
		return errLeadRequired
	}
	sourcesSeen, err := json.Marshal(nonNil(lead.SourcesSeen))
	if err != nil {
		return fmt.Errorf("marshal sources seen: %w", err)
	}
	productsSeen, err := json.Marshal(nonNil(lead.ProductsSeen))
	if err != nil {
		return fmt.Errorf("marshal products seen: %w", err)
	}
	history := lead.MergedFrom
	if history == nil {
		history = []models.MergeRecord{}
	}
	mergedFrom, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal merged from: %w", err)
	}

	query, args, err := squirrel.Insert(leadsTable).
		Columns(leadColumns...).
		Values(
			uuid.UUID(lead.LeadID), lead.Name, lead.Email, lead.PhoneNumber, lead.AadharNumber,
			string(lead.SourceID), string(lead.PID),
			sourcesSeen, productsSeen, mergedFrom,
			lead.LeadScore, lead.ScoreReason, nullDecimal(lead.Income), lead.CreditScore,
			lead.EmploymentType, nullDecimal(lead.LoanAmount), lead.Converted,
			nullTime(lead.CreatedAt), nullTime(lead.UpdatedAt),
		).
		Suffix(`ON CONFLICT (lead_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			aadhar_number = EXCLUDED.aadhar_number,
			source_id = EXCLUDED.source_id,
			p_id = EXCLUDED.p_id,
			sources_seen = EXCLUDED.sources_seen,
			products_seen = EXCLUDED.products_seen,
			merged_from = EXCLUDED.merged_from,
			lead_score = EXCLUDED.lead_score,
			score_reason = EXCLUDED.score_reason,
			income = EXCLUDED.income,
			credit_score = EXCLUDED.credit_score,
			employment_type = EXCLUDED.employment_type,
			loan_amount = EXCLUDED.loan_amount,
			converted = EXCLUDED.converted,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save lead query: %w", err)
	}
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save lead: %w", err)
	}
	return nil
}

// Update locks the lead row with SELECT ... FOR UPDATE, runs fn against it
// and saves the result in the same transaction. A transaction already on
// ctx is joined.
func (s *PostgresStore) Update(ctx context.Context, leadID id.LeadID, fn func(*models.Lead) error) (*models.Lead, error) {
	var updated *models.Lead
	err := txcontext.NewRunner(s.db, 0).RunInTx(ctx, func(ctx context.Context) error {
		lead, err := s.queryOne(ctx, squirrel.Select(leadColumns...).
			From(leadsTable).
			Where(squirrel.Eq{"lead_id": uuid.UUID(leadID)}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar), "lock lead")
		if err != nil {
			return err
		}
		if err := fn(lead); err != nil {
			return err
		}
		lead.LeadID = leadID
		if err := s.Save(ctx, lead); err != nil {
			return err
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, leadID id.LeadID) error {
	query, args, err := squirrel.Delete(leadsTable).
		Where(squirrel.Eq{"lead_id": uuid.UUID(leadID)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lead query: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := s.execer(ctx).ExecContext(ctx, "DELETE FROM "+leadsTable); err != nil {
		return fmt.Errorf("delete all leads: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM "+leadsTable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.Lead, error) {
	return s.query(ctx, selectLeads(), "find all leads")
}

func (s *PostgresStore) FindByPID(ctx context.Context, pID id.ProductID) ([]*models.Lead, error) {
	return s.query(ctx, selectLeads().Where(squirrel.Eq{"p_id": string(pID)}), "find leads by product")
}

func (s *PostgresStore) FindBySourceID(ctx context.Context, sourceID id.SourceID) ([]*models.Lead, error) {
	return s.query(ctx, selectLeads().Where(squirrel.Eq{"source_id": string(sourceID)}), "find leads by source")
}

func (s *PostgresStore) CountBySourceID(ctx context.Context, sourceID id.SourceID) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+leadsTable+" WHERE source_id = $1", string(sourceID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count leads by source: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) FindByLeadID(ctx context.Context, leadID id.LeadID) (*models.Lead, error) {
	return s.queryOne(ctx, selectLeads().Where(squirrel.Eq{"lead_id": uuid.UUID(leadID)}), "find lead by id")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierEmail, email)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierPhone, phone)
}

func (s *PostgresStore) FindByAadhar(ctx context.Context, aadhar string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierAadhar, aadhar)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Lead, int, error) {
	where := squirrel.Eq{}
	if filter.PID != "" {
		where["p_id"] = string(filter.PID)
	}
	if filter.SourceID != "" {
		where["source_id"] = string(filter.SourceID)
	}

	countQuery, countArgs, err := squirrel.Select("COUNT(*)").
		From(leadsTable).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count leads query: %w", err)
	}
	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	offset, limit := window(filter)
	leads, err := s.query(ctx, selectLeads().Where(where).Limit(uint64(limit)).Offset(uint64(offset)), "list leads")
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (s *PostgresStore) findByIdentifier(ctx context.Context, field id.IdentifierField, value string) (*models.Lead, error) {
	column, ok := identifierColumns[field]
	if !ok || value == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.queryOne(ctx, selectLeads().Where(squirrel.Eq{column: value}).Limit(1), "find lead by "+column)
}

func selectLeads() squirrel.SelectBuilder {
	return squirrel.Select(leadColumns...).
		From(leadsTable).
		OrderBy("seq").
		PlaceholderFormat(squirrel.Dollar)
}

func (s *PostgresStore) query(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]*models.Lead, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	leads := []*models.Lead{}
	for rows.Next() {
		var row leadRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		lead, err := toLead(row)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return leads, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, qb squirrel.SelectBuilder, op string) (*models.Lead, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	var row leadRow
	if err := s.execer(ctx).QueryRowContext(ctx, query, args...).Scan(row.targets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toLead(row)
}

// leadRow mirrors one leads table row.
type leadRow struct {
	LeadID         uuid.UUID
	Name           sql.NullString
	Email          sql.NullString
	PhoneNumber    sql.NullString
	AadharNumber   sql.NullString
	SourceID       string
	PID            string
	SourcesSeen    []byte
	ProductsSeen   []byte
	MergedFrom     []byte
	LeadScore      sql.NullFloat64
	ScoreReason    sql.NullString
	Income         decimal.NullDecimal
	CreditScore    sql.NullInt64
	EmploymentType sql.NullString
	LoanAmount     decimal.NullDecimal
	Converted      sql.NullBool
	CreatedAt      sql.NullTime
	UpdatedAt      sql.NullTime
}

func (r *leadRow) targets() []any {
	return []any{
		&r.LeadID, &r.Name, &r.Email, &r.PhoneNumber, &r.AadharNumber, &r.SourceID, &r.PID,
		&r.SourcesSeen, &r.ProductsSeen, &r.MergedFrom,
		&r.LeadScore, &r.ScoreReason, &r.Income, &r.CreditScore, &r.EmploymentType, &r.LoanAmount, &r.Converted,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func toLead(row leadRow) (*models.Lead, error) {
	lead := &models.Lead{
		LeadID:         id.LeadID(row.LeadID),
		Name:           stringPtr(row.Name),
		Email:          stringPtr(row.Email),
		PhoneNumber:    stringPtr(row.PhoneNumber),
		AadharNumber:   stringPtr(row.AadharNumber),
		SourceID:       id.SourceID(row.SourceID),
		PID:            id.ProductID(row.PID),
		LeadScore:      floatPtr(row.LeadScore),
		ScoreReason:    stringPtr(row.ScoreReason),
		Income:         decimalPtr(row.Income),
		CreditScore:    intPtr(row.CreditScore),
		EmploymentType: stringPtr(row.EmploymentType),
		LoanAmount:     decimalPtr(row.LoanAmount),
	}
	if row.Converted.Valid {
		v := row.Converted.Bool
		lead.Converted = &v
	}
	if row.CreatedAt.Valid {
		lead.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		lead.UpdatedAt = row.UpdatedAt.Time
	}
	if err := unmarshalJSON(row.SourcesSeen, &lead.SourcesSeen); err != nil {
		return nil, fmt.Errorf("unmarshal sources seen: %w", err)
	}
	if err := unmarshalJSON(row.ProductsSeen, &lead.ProductsSeen); err != nil {
		return nil, fmt.Errorf("unmarshal products seen: %w", err)
	}
	if err := unmarshalJSON(row.MergedFrom, &lead.MergedFrom); err != nil {
		return nil, fmt.Errorf("unmarshal merged from: %w", err)
	}
	return lead, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func decimalPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
