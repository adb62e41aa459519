package ports

import (
	"context"
	"io"

	"github.com/kirillkom/sitedocs/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	CountByCategory(ctx context.Context, projectID string) (map[string]int, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.Classification, inspection domain.Inspection) error
	SoftDelete(ctx context.Context, id string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentClassifier classifies a document by its filename.
type DocumentClassifier interface {
	Classify(ctx context.Context, filename string) (domain.Classification, error)
}

// DocumentInspector reads structural facts from a stored document.
type DocumentInspector interface {
	Inspect(ctx context.Context, doc *domain.Document) (domain.Inspection, error)
}

// SpreadsheetWriter renders documents as a workbook.
type SpreadsheetWriter interface {
	WriteDocuments(docs []domain.Document, w io.Writer) error
}
