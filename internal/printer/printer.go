// Package printer previews documents in the system browser and prints
// them to PDF with headless Chrome.
package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"school-admin/internal/documents"
)

// ErrPrintBlocked means the environment refused to open a browser or start Chrome
var ErrPrintBlocked = errors.New("print blocked")

// Publisher hosts a rendered file and returns the URL it is served at
type Publisher interface {
	Publish(file *documents.File) (string, error)
	URL(id string) (string, error)
}

// Opener opens url in the user's browser
type Opener func(url string) error

// Config configures a Printer
type Config struct {
	// ChromeEnabled allows PrintPDF to start a headless Chrome
	ChromeEnabled bool
	// Timeout bounds one headless print
	Timeout time.Duration
	// ExecPath overrides the Chrome binary chromedp looks up
	ExecPath string
}

// Printer previews and prints documents
type Printer struct {
	publisher Publisher
	open      Opener
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a printer. open defaults to the platform browser opener.
func New(publisher Publisher, open Opener, config Config, logger *slog.Logger) *Printer {
	if open == nil {
		open = OpenBrowser
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{
		publisher: publisher,
		open:      open,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Preview publishes doc as auto-printing HTML and opens it in the browser.
// The URL is returned even when the browser could not be opened, together
// with an error wrapping ErrPrintBlocked.
func (p *Printer) Preview(ctx context.Context, doc *documents.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.publisher == nil {
		return "", fmt.Errorf("%w: no preview server", ErrPrintBlocked)
	}

	file, err := documents.GenerateWith(doc, documents.HTMLRenderer{AutoPrint: true}, p.now())
	if err != nil {
		return "", err
	}

	id, err := p.publisher.Publish(file)
	if err != nil {
		return "", fmt.Errorf("failed to publish preview: %w", err)
	}
	url, err := p.publisher.URL(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPrintBlocked, err)
	}

	if err := p.open(url); err != nil {
		p.logger.Warn("Browser did not open", "url", url, "error", err)
		return url, fmt.Errorf("%w: %w", ErrPrintBlocked, err)
	}

	p.logger.Debug("Preview opened", "url", url, "document", file.Name)
	return url, nil
}

// PrintPDF renders doc as HTML and prints it to PDF with headless Chrome
func (p *Printer) PrintPDF(ctx context.Context, doc *documents.Document) (*documents.File, error) {
	if !p.config.ChromeEnabled {
		return nil, fmt.Errorf("%w: headless Chrome is disabled", ErrPrintBlocked)
	}

	now := p.now()
	html, err := documents.GenerateWith(doc, documents.HTMLRenderer{}, now)
	if err != nil {
		return nil, err
	}

	data, err := p.printHTML(ctx, html.Data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrPrintBlocked, err)
	}

	return &documents.File{
		Name:     documents.Filename(doc, "pdf", now),
		MIMEType: documents.PDFRenderer{}.MIMEType(),
		Data:     data,
	}, nil
}

func (p *Printer) printHTML(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)
	if p.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.config.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, p.config.Timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless print failed: %w", err)
	}

	p.logger.Debug("Printed with headless Chrome", "bytes", len(pdf))
	return pdf, nil
}

// OpenBrowser opens url with the platform's default handler
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait()
	return nil
}
