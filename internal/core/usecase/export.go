package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

const maxExportRows = 10000

type ExportUseCase struct {
	repo   ports.DocumentRepository
	writer ports.SpreadsheetWriter
}

func NewExportUseCase(repo ports.DocumentRepository, writer ports.SpreadsheetWriter) *ExportUseCase {
	return &ExportUseCase{repo: repo, writer: writer}
}

func (uc *ExportUseCase) Export(ctx context.Context, filter domain.DocumentFilter, w io.Writer) error {
	if err := validateFilter(filter); err != nil {
		return err
	}
	docs, err := uc.collect(ctx, filter)
	if err != nil {
		return err
	}
	if err := uc.writer.WriteDocuments(docs, w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}

// collect pages through the listing; Limit in filter is ignored.
func (uc *ExportUseCase) collect(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	page := filter
	page.Limit = domain.MaxListLimit
	page.Offset = 0

	out := make([]domain.Document, 0, domain.MaxListLimit)
	for len(out) < maxExportRows {
		docs, err := uc.repo.List(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		out = append(out, docs...)
		if len(docs) < page.Limit {
			break
		}
		page.Offset += len(docs)
	}
	if len(out) > maxExportRows {
		out = out[:maxExportRows]
	}
	return out, nil
}
