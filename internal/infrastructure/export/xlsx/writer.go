package xlsx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

const SheetName = "Documents"

var header = []string{
	"ID",
	"Project",
	"Filename",
	"Category",
	"Category label",
	"Confidence",
	"Matched keywords",
	"MIME type",
	"Size (bytes)",
	"Pages",
	"Status",
	"Created at",
}

// Writer renders document listings as a single-sheet workbook. The
// category label cell is filled with the category theme color.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteDocuments(docs []domain.Document, out io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#EEEEEE"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	categoryStyles, err := newCategoryStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetColWidth(3, 3, 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := sw.SetColWidth(7, 7, 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	headerRow := make([]interface{}, 0, len(header))
	for _, title := range header {
		headerRow = append(headerRow, excelize.Cell{StyleID: headerStyle, Value: title})
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, doc := range docs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d coordinates: %w", i+2, err)
		}
		if err := sw.SetRow(cell, documentRow(doc, categoryStyles)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newCategoryStyles(f *excelize.File) (map[doctype.Category]int, error) {
	styles := make(map[doctype.Category]int, len(doctype.All()))
	for _, c := range doctype.All() {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Color: "#FFFFFF", Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{doctype.ThemeColor(c)}},
		})
		if err != nil {
			return nil, fmt.Errorf("create style for %s: %w", c, err)
		}
		styles[c] = id
	}
	return styles, nil
}

func documentRow(doc domain.Document, categoryStyles map[doctype.Category]int) []interface{} {
	category := doc.Category
	if !category.Valid() {
		category = doctype.Unknown
	}
	return []interface{}{
		doc.ID,
		doc.ProjectID,
		doc.Filename,
		string(category),
		excelize.Cell{StyleID: categoryStyles[category], Value: doctype.DisplayName(category)},
		doc.Confidence,
		strings.Join(doc.MatchedKeywords, ", "),
		doc.MimeType,
		doc.SizeBytes,
		doc.PageCount,
		string(doc.Status),
		doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
