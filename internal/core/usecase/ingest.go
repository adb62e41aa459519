package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

const blobCleanupTimeout = 10 * time.Second

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	now     func() time.Time
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	projectID, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	filename = normalizeFilename(filename)
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("filename is required"))
	}
	mimeType = resolveMimeType(filename, mimeType)

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := uc.now()

	buffered := bufio.NewReader(body)
	if _, err := buffered.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty file body"))
		}
		return nil, fmt.Errorf("read upload body: %w", err)
	}

	counter := &countingReader{r: buffered}
	if err := uc.storage.Save(ctx, storageKey, counter); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:              id,
		ProjectID:       strings.TrimSpace(projectID),
		Filename:        filename,
		MimeType:        mimeType,
		StoragePath:     storageKey,
		SizeBytes:       counter.n,
		Status:          domain.StatusUploaded,
		MatchedKeywords: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		createErr := fmt.Errorf("create document metadata: %w", err)
		if cleanupErr := uc.discardBlob(ctx, storageKey); cleanupErr != nil {
			return nil, fmt.Errorf("%w; discard stored file: %v", createErr, cleanupErr)
		}
		return nil, createErr
	}

	// A publish failure leaves the row in uploaded with its file intact;
	// Requeue can send it through processing later.
	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

// Requeue sends an existing document through processing again, typically
// after the keyword tables changed.
func (uc *IngestDocumentUseCase) Requeue(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusUploaded, ""); err != nil {
		return nil, fmt.Errorf("set status=uploaded: %w", err)
	}
	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	doc.Status = domain.StatusUploaded
	doc.Error = ""
	return doc, nil
}

// discardBlob removes a stored file that no metadata row points to. It runs
// detached from ctx, which is often the reason Create failed.
func (uc *IngestDocumentUseCase) discardBlob(ctx context.Context, key string) error {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blobCleanupTimeout)
	defer cancel()
	return uc.storage.Delete(cleanupCtx, key)
}

// normalizeFilename keeps the base name in NFC. Uploads from macOS arrive
// decomposed, which splits kana like "ガ" and defeats keyword matching.
func normalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return norm.NFC.String(base)
}

func resolveMimeType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" || declared == doctype.OctetStream {
		return doctype.MimeTypeFromExtension(filename)
	}
	return declared
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
