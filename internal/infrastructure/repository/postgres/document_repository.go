package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

const documentColumns = `id, project_id, filename, mime_type, storage_path, size_bytes, page_count, category, confidence, matched_keywords, status, error_message, created_at, updated_at, deleted_at`

type DocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2024012701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	matched_keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_project_category ON documents(project_id, category) WHERE deleted_at IS NULL;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	keywordsJSON, err := marshalKeywords(doc.MatchedKeywords)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		doc.ID, doc.ProjectID, doc.Filename, doc.MimeType, doc.StoragePath, doc.SizeBytes, doc.PageCount,
		string(doc.Category), doc.Confidence, keywordsJSON, string(doc.Status), doc.Error,
		doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1 AND deleted_at IS NULL
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	filter = filter.Normalize()
	where, args := filterClause(filter.ProjectID, filter.Category, filter.Status)
	args = append(args, filter.Limit, filter.Offset)

	query := `
SELECT ` + documentColumns + `
FROM documents
` + where + fmt.Sprintf(`
ORDER BY created_at DESC, id
LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) CountByCategory(ctx context.Context, projectID string) (map[string]int, error) {
	where, args := filterClause(projectID, "", domain.StatusReady)
	rows, err := r.db.QueryContext(ctx, `
SELECT category, COUNT(*)
FROM documents
`+where+`
GROUP BY category
`, args...)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out[category] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1 AND deleted_at IS NULL
`, id, string(status), errMessage, r.now())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireAffected(result, "update document status", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification, inspection domain.Inspection) error {
	keywordsJSON, err := marshalKeywords(cls.MatchedKeywords)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET category = $2, confidence = $3, matched_keywords = $4, page_count = $5, updated_at = $6
WHERE id = $1 AND deleted_at IS NULL
`, id, string(cls.Category), cls.Confidence, keywordsJSON, inspection.PageCount, r.now())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireAffected(result, "save classification", id)
}

func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	now := r.now()
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET deleted_at = $2, updated_at = $2
WHERE id = $1 AND deleted_at IS NULL
`, id, now)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	return requireAffected(result, "soft delete document", id)
}

func filterClause(projectID string, category doctype.Category, status domain.DocumentStatus) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	args := make([]any, 0, 3)
	if projectID != "" {
		args = append(args, projectID)
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if category != "" {
		args = append(args, string(category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if status != "" {
		args = append(args, string(status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func requireAffected(result sql.Result, operation, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}

func marshalKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	raw, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("marshal matched keywords: %w", err)
	}
	return raw, nil
}

type documentScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row documentScanner) (domain.Document, error) {
	var doc domain.Document
	var category, status string
	var keywordsRaw []byte

	err := row.Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.Filename,
		&doc.MimeType,
		&doc.StoragePath,
		&doc.SizeBytes,
		&doc.PageCount,
		&category,
		&doc.Confidence,
		&keywordsRaw,
		&status,
		&doc.Error,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.DeletedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}

	doc.MatchedKeywords = []string{}
	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &doc.MatchedKeywords); err != nil {
			return domain.Document{}, fmt.Errorf("unmarshal matched keywords: %w", err)
		}
	}
	doc.Category = doctype.Category(category)
	doc.Status = domain.DocumentStatus(status)
	return doc, nil
}
