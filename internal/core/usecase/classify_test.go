package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
)

func TestClassifyFilename(t *testing.T) {
	uc := NewClassifyUseCase()

	got := uc.ClassifyFilename(context.Background(), "invoice_請求書_請求_receipt.pdf")
	if got.Category != doctype.Invoice {
		t.Fatalf("expected detailed category invoice, got %s", got.Category)
	}
	if got.SimpleCategory != doctype.Receipt {
		t.Fatalf("expected simple category receipt, got %s", got.SimpleCategory)
	}
	if got.MimeType != "application/pdf" {
		t.Fatalf("expected pdf mime, got %s", got.MimeType)
	}
	if got.DisplayName != doctype.DisplayName(doctype.Invoice) || got.ThemeColor != doctype.ThemeColor(doctype.Invoice) {
		t.Fatalf("expected invoice presentation, got %+v", got)
	}
}

func TestClassifyFilenameComposesDecomposedInput(t *testing.T) {
	uc := NewClassifyUseCase()

	got := uc.ClassifyFilename(context.Background(), "\u30ab\u3099\u30b9\u5de5\u4e8b_\u642c\u5165.jpg")
	if got.Filename != "\u30ac\u30b9\u5de5\u4e8b_\u642c\u5165.jpg" {
		t.Fatalf("expected NFC filename, got %q", got.Filename)
	}
	if got.Category != doctype.DeliverySlip {
		t.Fatalf("expected delivery_slip, got %s", got.Category)
	}
}

func TestClassifyFilenameEmpty(t *testing.T) {
	got := NewClassifyUseCase().ClassifyFilename(context.Background(), "")
	if got.Category != doctype.Unknown || got.Confidence != 0 || len(got.MatchedKeywords) != 0 {
		t.Fatalf("expected unknown zero result, got %+v", got)
	}
	if got.MimeType != doctype.OctetStream {
		t.Fatalf("expected octet-stream, got %s", got.MimeType)
	}
}

func TestCategoriesListsEveryCategory(t *testing.T) {
	got := NewClassifyUseCase().Categories()
	if len(got) != len(doctype.All()) {
		t.Fatalf("expected %d categories, got %d", len(doctype.All()), len(got))
	}
	for i, c := range doctype.All() {
		if got[i].Category != c || got[i].DisplayName == "" {
			t.Fatalf("unexpected descriptor %d: %+v", i, got[i])
		}
	}
}
