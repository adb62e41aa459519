package ports

import (
	"context"
	"io"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, projectID, filename, mimeType string, body io.Reader) (*domain.Document, error)
	Requeue(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	Stats(ctx context.Context, projectID string) ([]domain.CategoryCount, error)
}

type DocumentRemover interface {
	Delete(ctx context.Context, id string) error
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// FilenameClassifier answers classification questions synchronously,
// without storing anything.
type FilenameClassifier interface {
	ClassifyFilename(ctx context.Context, filename string) domain.FilenameClassification
	Categories() []doctype.Descriptor
}

// DocumentExporter renders a document listing as a spreadsheet.
type DocumentExporter interface {
	Export(ctx context.Context, filter domain.DocumentFilter, w io.Writer) error
}
