package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cliapi "school-admin/internal/cli"
	"school-admin/internal/documents"
	"school-admin/internal/i18n"
	"school-admin/internal/printer"
	"school-admin/internal/server"
)

// addDocumentFlags registers the flags shared by every command producing a document
func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().String("doc-format", "pdf", "Document format: pdf, html, xls or xlsx")
	cmd.Flags().StringP("output", "o", "", "File to write (default: generated name in the output directory)")
	cmd.Flags().Bool("print", false, "Print to PDF with headless Chrome")
	cmd.Flags().Bool("preview", false, "Open a printable preview in the browser and serve it until interrupted")
}

// emitDocument renders doc the way the document flags ask for. Printing
// falls back to saving a file when it is blocked.
func emitDocument(cmd *cobra.Command, a *app, doc *documents.Document) error {
	ctx := cmd.Context()

	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		return previewDocument(cmd, a, doc)
	}

	if toPDF, _ := cmd.Flags().GetBool("print"); toPDF {
		var file *documents.File
		err := cliapi.RunWithSpinner("Printing", a.config.NoColor, func() error {
			var err error
			file, err = a.printer.PrintPDF(ctx, doc)
			return err
		})
		switch {
		case err == nil:
			path, err := writeDocument(cmd, a, file)
			if err != nil {
				return a.fail(err)
			}
			a.formatter.PrintSuccess(a.catalog.T(i18n.MsgDocumentSaved, path))
			return nil
		case errors.Is(err, printer.ErrPrintBlocked):
			a.logger.Debug("Print blocked, saving instead", "error", err)
			path, err := saveDocument(cmd, a, doc)
			if err != nil {
				return a.fail(err)
			}
			a.formatter.PrintWarning(a.catalog.T(i18n.MsgPrintBlocked, path))
			return nil
		default:
			return a.fail(err)
		}
	}

	path, err := saveDocument(cmd, a, doc)
	if err != nil {
		return a.fail(err)
	}
	a.formatter.PrintSuccess(a.catalog.T(i18n.MsgDocumentSaved, path))
	return nil
}

// saveDocument renders doc in the requested format and writes it
func saveDocument(cmd *cobra.Command, a *app, doc *documents.Document) (string, error) {
	raw, _ := cmd.Flags().GetString("doc-format")
	format, err := documents.ParseFormat(raw)
	if err != nil {
		return "", err
	}

	file, err := documents.Generate(doc, format, a.now())
	if err != nil {
		return "", err
	}
	return writeDocument(cmd, a, file)
}

func writeDocument(cmd *cobra.Command, a *app, file *documents.File) (string, error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		var err error
		if path, err = a.outputPath(file.Name); err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.logger.Debug("Document written", "path", path, "bytes", len(file.Data))
	return path, nil
}

// previewDocument serves doc from the local preview server and opens it.
// It blocks until the command is interrupted.
func previewDocument(cmd *cobra.Command, a *app, doc *documents.Document) error {
	if err := a.preview.Start(); err != nil {
		return a.fail(err)
	}

	url, err := a.printer.Preview(cmd.Context(), doc)
	opened := err == nil
	switch {
	case err == nil:
	case errors.Is(err, printer.ErrPrintBlocked) && url != "":
		a.logger.Debug("Browser unavailable", "error", err)
	case errors.Is(err, printer.ErrPrintBlocked):
		path, saveErr := saveDocument(cmd, a, doc)
		if saveErr != nil {
			return a.fail(saveErr)
		}
		a.formatter.PrintWarning(a.catalog.T(i18n.MsgPrintBlocked, path))
		return nil
	default:
		return a.fail(err)
	}

	announcePreview(a.formatter, a.catalog, url, opened)
	return server.WaitForShutdown(cmd.Context(), a.preview, 5*time.Second, a.logger)
}

// announcePreview prints where the preview is served, with a warning when the
// browser could not be opened for the user
func announcePreview(f *cliapi.OutputFormatter, catalog *i18n.Catalog, url string, opened bool) {
	if !opened {
		f.PrintWarning(catalog.T(i18n.MsgBrowserBlocked, url))
	}
	f.PrintInfo(catalog.T(i18n.MsgPreviewReady, url))
}
