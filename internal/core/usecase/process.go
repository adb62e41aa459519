package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

// failStatusTimeout bounds the failed-status write, which runs detached from
// the processing deadline.
const failStatusTimeout = 5 * time.Second

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	classifier ports.DocumentClassifier
	inspector  ports.DocumentInspector
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	classifier ports.DocumentClassifier,
	inspector ports.DocumentInspector,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		classifier: classifier,
		inspector:  inspector,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, classification, inspection, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persistClassification(ctx, doc.ID, classification, inspection); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(
	ctx context.Context,
	documentID string,
) (*domain.Document, domain.Classification, domain.Inspection, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, domain.Classification{}, domain.Inspection{}, err
	}

	classification, err := uc.classify(ctx, doc)
	if err != nil {
		return nil, domain.Classification{}, domain.Inspection{}, err
	}

	inspection, err := uc.inspect(ctx, doc)
	if err != nil {
		return nil, domain.Classification{}, domain.Inspection{}, err
	}

	uc.applyClassification(doc, classification, inspection)
	return doc, classification, inspection, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) classify(ctx context.Context, doc *domain.Document) (domain.Classification, error) {
	classification, err := uc.classifier.Classify(ctx, doc.Filename)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}
	if classification.MatchedKeywords == nil {
		classification.MatchedKeywords = []string{}
	}
	return classification, nil
}

func (uc *ProcessDocumentUseCase) inspect(ctx context.Context, doc *domain.Document) (domain.Inspection, error) {
	if uc.inspector == nil {
		return domain.Inspection{}, nil
	}
	inspection, err := uc.inspector.Inspect(ctx, doc)
	if err != nil {
		// An unreadable or oversized PDF keeps its filename classification
		// and is stored without a page count.
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return domain.Inspection{}, nil
		}
		return domain.Inspection{}, fmt.Errorf("inspect document: %w", err)
	}
	return inspection, nil
}

func (uc *ProcessDocumentUseCase) persistClassification(
	ctx context.Context,
	documentID string,
	classification domain.Classification,
	inspection domain.Inspection,
) error {
	if err := uc.repo.SaveClassification(ctx, documentID, classification, inspection); err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	// ctx may already be past its deadline; the document must not stay in
	// processing because of that.
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failStatusTimeout)
	defer cancel()
	return uc.markStatus(failCtx, documentID, domain.StatusFailed, processErr.Error())
}

func (uc *ProcessDocumentUseCase) applyClassification(doc *domain.Document, classification domain.Classification, inspection domain.Inspection) {
	doc.Category = classification.Category
	doc.Confidence = classification.Confidence
	doc.MatchedKeywords = classification.MatchedKeywords
	doc.PageCount = inspection.PageCount
}
