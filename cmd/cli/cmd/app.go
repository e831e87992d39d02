package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"school-admin/internal/api"
	"school-admin/internal/cache"
	cliapi "school-admin/internal/cli"
	"school-admin/internal/config"
	"school-admin/internal/database"
	"school-admin/internal/documents"
	"school-admin/internal/i18n"
	"school-admin/internal/mailer"
	"school-admin/internal/printer"
	"school-admin/internal/server"
	"school-admin/internal/session"
	"school-admin/internal/validation"
	"school-admin/internal/views"
)

// app holds everything a command needs
type app struct {
	config    *config.Config
	logger    *slog.Logger
	db        *database.DB
	sessions  *session.Manager
	cache     *cache.Manager
	client    *api.Client
	catalog   *i18n.Catalog
	validator *validation.Validator
	formatter *cliapi.OutputFormatter
	notifier  *cliapi.Notifier
	preview   *server.PreviewServer
	printer   *printer.Printer
	now       func() time.Time
}

// initializeApp loads configuration and wires the stores, the API client and the output
func initializeApp(cmd *cobra.Command) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithViper(newViper(cmd))
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	catalog, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, err
	}

	formatter := cliapi.NewOutputFormatter(cfg.Format, cfg.Quiet, cfg.NoColor).
		WithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()).
		WithCatalog(catalog).
		WithCurrency(cfg.School.Currency)

	v, err := validation.New(catalog)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		formatter.PrintError(err)
		return nil, err
	}

	sessions, err := session.NewManager(database.NewSessionStore(db.KV), logger)
	if err != nil {
		db.Close()
		formatter.PrintError(err)
		return nil, err
	}

	cacheManager := cache.NewManager(db.ListCache, cfg.CacheDisabled, cfg.CacheTTL, logger)

	client := api.NewClient(api.ClientConfig{
		BaseURL:      cfg.APIURL,
		Timeout:      cfg.RequestTimeout,
		BypassHeader: cfg.BypassHeader,
		BypassValue:  cfg.BypassValue,
	}, sessions, cacheManager, logger)

	preview := server.NewPreviewServer(cfg.PreviewAddr, logger)

	return &app{
		config:    cfg,
		logger:    logger,
		db:        db,
		sessions:  sessions,
		cache:     cacheManager,
		client:    client,
		catalog:   catalog,
		validator: v,
		formatter: formatter,
		notifier:  cliapi.NewNotifier(formatter),
		preview:   preview,
		printer: printer.New(preview, nil, printer.Config{
			ChromeEnabled: cfg.ChromeEnabled,
			Timeout:       cfg.RequestTimeout,
			ExecPath:      cfg.ChromePath,
		}, logger),
		now: time.Now,
	}, nil
}

// Close stops background work and closes the database
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.preview.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to stop preview server", "error", err)
	}
	a.cache.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

// fail prints err and returns it, so RunE can `return a.fail(err)`
func (a *app) fail(err error) error {
	a.formatter.PrintError(err)
	return err
}

// mutation returns a fresh submission reporting through the formatter
func (a *app) mutation() *views.Mutation {
	return views.NewMutation(a.notifier)
}

// school returns the header printed on generated documents
func (a *app) school() documents.SchoolInfo {
	s := a.config.School
	return documents.SchoolInfo{
		Name:     s.Name,
		Address:  s.Address,
		Phone:    s.Phone,
		Email:    s.Email,
		Currency: s.Currency,
	}
}

// newMailer builds the Gmail sender from the configured credentials
func (a *app) newMailer(ctx context.Context) (mailer.Sender, error) {
	g := a.config.Gmail
	return mailer.NewGmailSender(ctx, mailer.GmailConfig{
		ClientID:       g.ClientID,
		ClientSecret:   g.ClientSecret,
		RefreshToken:   g.RefreshToken,
		AccessToken:    g.AccessToken,
		UserEmail:      g.UserEmail,
		From:           g.From,
		RequestTimeout: a.config.RequestTimeout,
	}, a.logger)
}

// studentNames maps student ids to full names. A failure only degrades the
// output to bare ids.
func (a *app) studentNames(ctx context.Context) map[int64]string {
	students, err := a.client.AllStudents(ctx)
	if err != nil {
		a.logger.Warn("Failed to load student names", "error", err)
		return nil
	}
	names := make(map[int64]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName()
	}
	return names
}

// classNames maps class ids to names
func (a *app) classNames(ctx context.Context) map[int64]string {
	classes, err := a.client.AllClasses(ctx)
	if err != nil {
		a.logger.Warn("Failed to load class names", "error", err)
		return nil
	}
	names := make(map[int64]string, len(classes))
	for _, c := range classes {
		names[c.ID] = c.Name
	}
	return names
}

// outputPath places a generated file under the configured output directory
func (a *app) outputPath(name string) (string, error) {
	dir := a.config.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}
