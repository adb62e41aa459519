package usecase

import (
	"context"

	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

// ClassifyUseCase answers classification questions for bare filenames.
type ClassifyUseCase struct{}

func NewClassifyUseCase() *ClassifyUseCase {
	return &ClassifyUseCase{}
}

func (uc *ClassifyUseCase) ClassifyFilename(_ context.Context, filename string) domain.FilenameClassification {
	filename = norm.NFC.String(filename)
	detailed := doctype.ClassifyDetailed(filename)

	return domain.FilenameClassification{
		Filename:        filename,
		Category:        detailed.Category,
		SimpleCategory:  doctype.ClassifySimple(filename),
		Confidence:      detailed.Confidence,
		MatchedKeywords: detailed.MatchedKeywords,
		MimeType:        doctype.MimeTypeFromExtension(filename),
		DisplayName:     doctype.DisplayName(detailed.Category),
		IconKey:         doctype.IconKey(detailed.Category),
		ThemeColor:      doctype.ThemeColor(detailed.Category),
	}
}

func (uc *ClassifyUseCase) Categories() []doctype.Descriptor {
	all := doctype.All()
	out := make([]doctype.Descriptor, 0, len(all))
	for _, c := range all {
		out = append(out, doctype.Describe(c))
	}
	return out
}
