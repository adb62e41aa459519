package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kirillkom/sitedocs/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type repoFake struct {
	doc         *domain.Document
	created     *domain.Document
	createErr   error
	getErr      error
	saveErr     error
	statusErr   error
	failErr     error
	listErr     error
	deleteErr   error
	statusCalls []statusCall

	pages   [][]domain.Document
	filters []domain.DocumentFilter
	counts  map[string]int

	classification   domain.Classification
	inspection       domain.Inspection
	classificationID string
	deletedID        string
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc == nil {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id="+id))
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *repoFake) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pages) == 0 {
		return []domain.Document{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *repoFake) CountByCategory(context.Context, string) (map[string]int, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.counts, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status == domain.StatusFailed && f.failErr != nil {
		return f.failErr
	}
	return f.statusErr
}

func (f *repoFake) SaveClassification(_ context.Context, id string, cls domain.Classification, inspection domain.Inspection) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.classificationID = id
	f.classification = cls
	f.inspection = inspection
	return nil
}

func (f *repoFake) SoftDelete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

type storageFake struct {
	savedKey     string
	savedBody    string
	err          error
	deleteErr    error
	deletedKey   string
	deleteCtxErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

func (f *storageFake) Delete(ctx context.Context, key string) error {
	f.deletedKey = key
	f.deleteCtxErr = ctx.Err()
	return f.deleteErr
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}
