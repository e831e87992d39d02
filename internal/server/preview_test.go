package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/documents"
)

func localRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:40000"
	return req
}

func TestPreviewServer_ServesPublishedDocument(t *testing.T) {
	p := NewPreviewServer("", discardLogger())
	file := &documents.File{Name: "invoice-INV-2025-001-2025-03-15.html", MIMEType: "text/html; charset=utf-8", Data: []byte("<h1>Facture</h1>")}

	id, err := p.Publish(file)
	require.NoError(t, err)
	file.Data[1] = 'X' // callers may reuse their buffer

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, localRequest("GET", "/documents/"+id))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>Facture</h1>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-INV-2025-001-2025-03-15.html")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPreviewServer_UnknownAndUnpublished(t *testing.T) {
	p := NewPreviewServer("", discardLogger())

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, localRequest("GET", "/documents/missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	id, err := p.Publish(&documents.File{Name: "a.html", MIMEType: "text/html", Data: []byte("a")})
	require.NoError(t, err)
	p.Unpublish(id)

	w = httptest.NewRecorder()
	p.Handler().ServeHTTP(w, localRequest("GET", "/documents/"+id))
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err = p.Publish(&documents.File{Name: "empty.html"})
	assert.Error(t, err)
}

func TestPreviewServer_HealthAndList(t *testing.T) {
	p := NewPreviewServer("", discardLogger())
	_, err := p.Publish(&documents.File{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, localRequest("GET", "/healthz"))
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["documents"])

	w = httptest.NewRecorder()
	p.Handler().ServeHTTP(w, localRequest("GET", "/documents"))
	var infos []DocumentInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "a.pdf", infos[0].Name)
	assert.Equal(t, 4, infos[0].Size)
}

func TestPreviewServer_RejectsRemoteClients(t *testing.T) {
	p := NewPreviewServer("", discardLogger())

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.RemoteAddr = "10.0.0.8:5555"
	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPreviewServer_StartAndShutdown(t *testing.T) {
	p := NewPreviewServer("127.0.0.1:0", discardLogger())

	_, err := p.URL("x")
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, p.Start())
	require.NoError(t, p.Start())

	id, err := p.Publish(&documents.File{Name: "a.html", MIMEType: "text/html", Data: []byte("hello")})
	require.NoError(t, err)

	url, err := p.URL(id)
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
	assert.Empty(t, p.Addr())
	require.NoError(t, p.Shutdown(ctx))
}

func TestWaitForShutdown_ContextCancel(t *testing.T) {
	p := NewPreviewServer("127.0.0.1:0", discardLogger())
	require.NoError(t, p.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, WaitForShutdown(ctx, p, time.Second, discardLogger()))
	assert.Empty(t, p.Addr())
}
