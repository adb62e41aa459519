package httpadapter

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/usecase"
)

type ingestFake struct {
	err error

	projectID string
	filename  string
	mimeType  string
	body      string
	requeued  []string
}

func (f *ingestFake) Upload(_ context.Context, projectID, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.projectID, f.filename, f.mimeType, f.body = projectID, filename, mimeType, string(raw)

	now := time.Now().UTC()
	return &domain.Document{
		ID:              "doc-1",
		ProjectID:       projectID,
		Filename:        filename,
		MimeType:        mimeType,
		StoragePath:     "doc-1_" + filename,
		SizeBytes:       int64(len(raw)),
		MatchedKeywords: []string{},
		Status:          domain.StatusUploaded,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (f *ingestFake) Requeue(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requeued = append(f.requeued, id)
	return &domain.Document{ID: id, Status: domain.StatusUploaded, MatchedKeywords: []string{}}, nil
}

type readerFake struct {
	err    error
	doc    *domain.Document
	docs   []domain.Document
	counts []domain.CategoryCount

	lastFilter  domain.DocumentFilter
	lastProject string
}

func (f *readerFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *readerFake) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *readerFake) Stats(_ context.Context, projectID string) ([]domain.CategoryCount, error) {
	f.lastProject = projectID
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

type removerFake struct {
	err     error
	deleted []string
}

func (f *removerFake) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type exporterFake struct {
	err        error
	lastFilter domain.DocumentFilter
}

func (f *exporterFake) Export(_ context.Context, filter domain.DocumentFilter, w io.Writer) error {
	f.lastFilter = filter
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "PK-fake-workbook")
	return err
}

func newTestHandler(t *testing.T, cfg config.Config, svc Services) http.Handler {
	t.Helper()
	if svc.Classifier == nil {
		svc.Classifier = usecase.NewClassifyUseCase()
	}
	rt, err := NewRouter(cfg, svc, nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return rt.Handler()
}
