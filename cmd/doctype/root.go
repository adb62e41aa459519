package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/sitedocs/internal/core/usecase"
	"github.com/kirillkom/sitedocs/internal/observability/logging"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type rootOptions struct {
	output   string
	logLevel string
	logger   *slog.Logger
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	classifier := usecase.NewClassifyUseCase()

	root := &cobra.Command{
		Use:           "doctype",
		Short:         "Classify construction site documents by filename",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unsupported output %q (want text, json or yaml)", opts.output)
			}
			opts.logger = logging.New(errOut, "doctype", opts.logLevel, "text")
			opts.logger.Debug("doctype_started", "command", cmd.Name(), "output", opts.output)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	root.AddCommand(
		newClassifyCommand(opts, classifier),
		newCategoriesCommand(opts, classifier),
		newMimeCommand(opts),
	)
	return root
}

// filenamesFrom returns args, or one filename per non-blank stdin line when
// no args were given.
func filenamesFrom(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var names []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read filenames from stdin: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no filenames given")
	}
	return names, nil
}
