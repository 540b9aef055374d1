package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/records"
)

// RegistrationsTable is the table the registration backend writes to.
const RegistrationsTable = "registrations"

// PostgresSource reads the registrations table directly. It never writes.
type PostgresSource struct {
	db    *sql.DB
	sb    squirrel.StatementBuilderType
	table string
}

// NewPostgres creates a source over db.
func NewPostgres(db *sql.DB) *PostgresSource {
	return &PostgresSource{
		db:    db,
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		table: RegistrationsTable,
	}
}

func (s *PostgresSource) Name() string { return "postgres" }

// Fetch selects every registration, oldest first.
func (s *PostgresSource) Fetch(ctx context.Context) ([]records.Record, error) {
	query, args, err := s.sb.Select(
		"id::text", "name", "gender", "email", "whatsapp_number", "college",
		"branch", "slot", "attendance", "attendance_date", "registration_date",
	).
		From(s.table).
		OrderBy("registration_date ASC NULLS LAST", "id ASC").
		ToSql()
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Err: fmt.Errorf("build query: %w", err)}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Err: fmt.Errorf("query registrations: %w", err)}
	}
	defer rows.Close()

	out := []records.Record{}
	for rows.Next() {
		var (
			id, name, gender, email, phone, college, branch, slot sql.NullString
			attendance                                            sql.NullBool
			attendedAt, registeredAt                              sql.NullTime
		)
		if err := rows.Scan(&id, &name, &gender, &email, &phone, &college, &branch, &slot,
			&attendance, &attendedAt, &registeredAt); err != nil {
			return nil, &apperrors.FetchError{Source: s.Name(), Err: fmt.Errorf("scan registration: %w", err)}
		}
		out = append(out, records.Record{
			ID:               id.String,
			Name:             name.String,
			Gender:           gender.String,
			Email:            email.String,
			Phone:            phone.String,
			College:          college.String,
			Branch:           branch.String,
			Slot:             slot.String,
			Attendance:       attendance.Valid && attendance.Bool,
			AttendanceDate:   optionalTime(attendedAt),
			RegistrationDate: optionalTime(registeredAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &apperrors.FetchError{Source: s.Name(), Err: fmt.Errorf("iterate registrations: %w", err)}
	}
	return out, nil
}

func optionalTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
