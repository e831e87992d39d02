// Package server hosts generated documents on a loopback HTTP server so
// that the system browser can preview and print them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"school-admin/internal/documents"
)

// DefaultAddr binds an ephemeral loopback port
const DefaultAddr = "127.0.0.1:0"

// ErrNotStarted is returned by URL when the server is not listening
var ErrNotStarted = errors.New("preview server not started")

type published struct {
	id          string
	file        documents.File
	publishedAt time.Time
}

// DocumentInfo describes a published document
type DocumentInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MIMEType    string    `json:"mime_type"`
	Size        int       `json:"size"`
	PublishedAt time.Time `json:"published_at"`
}

// PreviewServer serves published documents at /documents/{id}
type PreviewServer struct {
	addr   string
	logger *slog.Logger

	mu       sync.RWMutex
	docs     map[string]published
	listener net.Listener
	srv      *http.Server
	done     chan error
}

// NewPreviewServer creates a preview server bound to addr once started
func NewPreviewServer(addr string, logger *slog.Logger) *PreviewServer {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewServer{
		addr:   addr,
		logger: logger,
		docs:   make(map[string]published),
	}
}

// Handler returns the router with its middleware
func (p *PreviewServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", p.handleHealth)
	r.Get("/documents", p.handleList)
	r.Get("/documents/{id}", p.handleDocument)

	return Chain(r,
		LoggingMiddleware(p.logger),
		RecoveryMiddleware(p.logger),
		LocalOnlyMiddleware,
		SecurityMiddleware,
	)
}

// Publish stores a copy of file and returns its id
func (p *PreviewServer) Publish(file *documents.File) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", fmt.Errorf("nothing to publish")
	}

	data := make([]byte, len(file.Data))
	copy(data, file.Data)

	id := uuid.NewString()
	p.mu.Lock()
	p.docs[id] = published{
		id:          id,
		file:        documents.File{Name: file.Name, MIMEType: file.MIMEType, Data: data},
		publishedAt: time.Now(),
	}
	p.mu.Unlock()

	p.logger.Debug("Document published", "id", id, "name", file.Name)
	return id, nil
}

// Unpublish removes a document; unknown ids are ignored
func (p *PreviewServer) Unpublish(id string) {
	p.mu.Lock()
	delete(p.docs, id)
	p.mu.Unlock()
}

// Start listens on the configured address and serves in the background
func (p *PreviewServer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.addr, err)
	}

	p.listener = ln
	p.srv = &http.Server{
		Handler:      p.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	p.done = make(chan error, 1)

	go func(srv *http.Server, done chan<- error) {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}(p.srv, p.done)

	p.logger.Info("Preview server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listening address, or "" before Start
func (p *PreviewServer) Addr() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// URL returns the address at which the document id is served
func (p *PreviewServer) URL(id string) (string, error) {
	addr := p.Addr()
	if addr == "" {
		return "", ErrNotStarted
	}
	return "http://" + addr + "/documents/" + id, nil
}

// Shutdown stops the server gracefully
func (p *PreviewServer) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv, done := p.srv, p.done
	p.srv, p.listener, p.done = nil, nil, nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down preview server: %w", err)
	}
	return <-done
}

func (p *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	count := len(p.docs)
	p.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"documents": count,
	})
}

func (p *PreviewServer) handleList(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	infos := make([]DocumentInfo, 0, len(p.docs))
	for _, doc := range p.docs {
		infos = append(infos, DocumentInfo{
			ID:          doc.id,
			Name:        doc.file.Name,
			MIMEType:    doc.file.MIMEType,
			Size:        len(doc.file.Data),
			PublishedAt: doc.publishedAt,
		})
	}
	p.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].PublishedAt.Before(infos[j].PublishedAt)
	})
	writeJSON(w, http.StatusOK, infos)
}

func (p *PreviewServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p.mu.RLock()
	doc, ok := p.docs[id]
	p.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", doc.file.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.file.Name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.file.Data); err != nil {
		p.logger.Warn("Failed to write document", "id", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
