package certificate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"securevault/internal/certificate/models"
	"securevault/pkg/platform/sentinel"
)

// Postgres persists certificates in a postgres table. The unique constraint
// on unique_id is the authoritative duplicate check; seq preserves insertion
// order for list queries.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a postgres-backed certificate store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the certificates table when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS certificates (
			seq               BIGSERIAL,
			unique_id         TEXT PRIMARY KEY,
			student_id        TEXT NOT NULL,
			student_name      TEXT NOT NULL DEFAULT '',
			department        TEXT NOT NULL DEFAULT '',
			certificate_title TEXT NOT NULL,
			file_reference    TEXT NOT NULL DEFAULT '',
			issued_at         TIMESTAMPTZ NOT NULL,
			verification_url  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS certificates_student_id_idx ON certificates (student_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate certificates: %w", err)
	}
	return nil
}

const certColumns = `unique_id, student_id, student_name, department, certificate_title, file_reference, issued_at, verification_url`

func (s *Postgres) Create(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT INTO certificates (` + certColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		cert.UniqueID,
		cert.StudentID,
		cert.StudentName,
		cert.Department,
		cert.CertificateTitle,
		cert.FileReference,
		cert.IssuedAt,
		cert.VerificationURL,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, uniqueID string) (*models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE unique_id = $1`
	cert, err := scanCertificate(s.db.QueryRowContext(ctx, query, uniqueID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query certificate: %w", err)
	}
	return cert, nil
}

func (s *Postgres) ListByStudent(ctx context.Context, studentID string) ([]*models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates WHERE student_id = $1 ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query certificates by student: %w", err)
	}
	defer rows.Close()
	return scanCertificates(rows)
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()
	return scanCertificates(rows)
}

func (s *Postgres) Update(ctx context.Context, cert *models.Certificate) error {
	query := `
		UPDATE certificates
		SET student_id = $2, student_name = $3, department = $4,
		    certificate_title = $5, file_reference = $6, issued_at = $7
		WHERE unique_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		cert.UniqueID,
		cert.StudentID,
		cert.StudentName,
		cert.Department,
		cert.CertificateTitle,
		cert.FileReference,
		cert.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, uniqueID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM certificates WHERE unique_id = $1`, uniqueID)
	if err != nil {
		return false, fmt.Errorf("delete certificate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete certificate: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	var cert models.Certificate
	err := row.Scan(
		&cert.UniqueID,
		&cert.StudentID,
		&cert.StudentName,
		&cert.Department,
		&cert.CertificateTitle,
		&cert.FileReference,
		&cert.IssuedAt,
		&cert.VerificationURL,
	)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func scanCertificates(rows *sql.Rows) ([]*models.Certificate, error) {
	var certs []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, nil
}
