package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

type classifyRow struct {
	Filename        string           `json:"filename" yaml:"filename"`
	Category        doctype.Category `json:"category" yaml:"category"`
	DisplayName     string           `json:"display_name" yaml:"display_name"`
	MimeType        string           `json:"mime_type" yaml:"mime_type"`
	Confidence      *float64         `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	MatchedKeywords []string         `json:"matched_keywords,omitempty" yaml:"matched_keywords,omitempty"`
}

type mimeRow struct {
	Filename string `json:"filename" yaml:"filename"`
	MimeType string `json:"mime_type" yaml:"mime_type"`
}

func newClassifyCommand(opts *rootOptions, classifier ports.FilenameClassifier) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "classify [filenames...]",
		Short: "Print the category of each filename",
		Long: "Print the category of each filename. Without --detailed the first matching " +
			"category wins; with --detailed keywords are weighted and confidence is reported. " +
			"Filenames are read from stdin, one per line, when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := filenamesFrom(cmd, args)
			if err != nil {
				return err
			}

			rows := make([]classifyRow, 0, len(names))
			for _, name := range names {
				result := classifier.ClassifyFilename(cmd.Context(), name)
				row := classifyRow{
					Filename:    result.Filename,
					Category:    result.SimpleCategory,
					DisplayName: doctype.DisplayName(result.SimpleCategory),
					MimeType:    result.MimeType,
				}
				if detailed {
					confidence := result.Confidence
					row.Category = result.Category
					row.DisplayName = result.DisplayName
					row.Confidence = &confidence
					row.MatchedKeywords = result.MatchedKeywords
				}
				opts.logger.Debug("filename_classified", "filename", row.Filename, "category", row.Category)
				rows = append(rows, row)
			}

			if opts.output != outputText {
				return writeStructured(cmd.OutOrStdout(), opts.output, rows)
			}

			t := newTable(cmd)
			if detailed {
				t.AppendHeader(table.Row{"Filename", "Category", "Display name", "Confidence", "Keywords"})
				for _, row := range rows {
					t.AppendRow(table.Row{row.Filename, row.Category, row.DisplayName, fmt.Sprintf("%.2f", *row.Confidence), strings.Join(row.MatchedKeywords, ", ")})
				}
			} else {
				t.AppendHeader(table.Row{"Filename", "Category", "Display name", "MIME type"})
				for _, row := range rows {
					t.AppendRow(table.Row{row.Filename, row.Category, row.DisplayName, row.MimeType})
				}
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "use the weighted classifier and show confidence")
	return cmd
}

func newCategoriesCommand(opts *rootOptions, classifier ports.FilenameClassifier) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List document categories with display attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors := classifier.Categories()
			if opts.output != outputText {
				return writeStructured(cmd.OutOrStdout(), opts.output, descriptors)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Category", "Display name", "Icon", "Color"})
			for _, d := range descriptors {
				t.AppendRow(table.Row{d.Category, d.DisplayName, d.IconKey, d.ThemeColor})
			}
			t.Render()
			return nil
		},
	}
}

func newMimeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mime [filenames...]",
		Short: "Print the MIME type inferred from each filename's extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := filenamesFrom(cmd, args)
			if err != nil {
				return err
			}

			rows := make([]mimeRow, 0, len(names))
			for _, name := range names {
				rows = append(rows, mimeRow{Filename: name, MimeType: doctype.MimeTypeFromExtension(name)})
			}
			if opts.output != outputText {
				return writeStructured(cmd.OutOrStdout(), opts.output, rows)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Filename", "MIME type"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.Filename, row.MimeType})
			}
			t.Render()
			return nil
		},
	}
}
