package filename

import (
	"context"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

// Classifier assigns a category from the stored filename alone.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(ctx context.Context, filename string) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Classification{}, err
	}
	result := doctype.ClassifyDetailed(filename)
	return domain.Classification{
		Category:        result.Category,
		Confidence:      result.Confidence,
		MatchedKeywords: result.MatchedKeywords,
	}, nil
}
