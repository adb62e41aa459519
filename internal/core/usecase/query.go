package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

type QueryUseCase struct {
	repo ports.DocumentRepository
}

func NewQueryUseCase(repo ports.DocumentRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("document id is required"))
	}
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *QueryUseCase) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	docs, err := uc.repo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Stats counts live documents per category. Every category is present in
// enumeration order, zero-filled.
func (uc *QueryUseCase) Stats(ctx context.Context, projectID string) ([]domain.CategoryCount, error) {
	counts, err := uc.repo.CountByCategory(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return nil, fmt.Errorf("count documents by category: %w", err)
	}

	all := doctype.All()
	out := make([]domain.CategoryCount, 0, len(all))
	for _, c := range all {
		out = append(out, domain.CategoryCount{
			Category:    c,
			DisplayName: doctype.DisplayName(c),
			Count:       counts[string(c)],
		})
	}
	return out, nil
}

func (uc *QueryUseCase) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete document", errors.New("document id is required"))
	}
	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func validateFilter(filter domain.DocumentFilter) error {
	if filter.Category != "" && !filter.Category.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("unknown category %q", filter.Category))
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("unknown status %q", filter.Status))
	}
	return nil
}
