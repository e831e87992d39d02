package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"school-admin/internal/documents"
)

func parseMIME(t *testing.T, raw []byte) (*mail.Message, []*multipart.Part, [][]byte) {
	t.Helper()

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	var parts []*multipart.Part
	var bodies [][]byte
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(data), "\r\n", ""))
		require.NoError(t, err)
		parts = append(parts, part)
		bodies = append(bodies, decoded)
	}
	return msg, parts, bodies
}

func TestBuildMIME_WithAttachment(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.3 facture "), 20)
	msg := &Message{
		To:      []string{"Awa Diallo <awa@example.com>"},
		Cc:      []string{"compta@example.com"},
		Subject: "Facture INV-2025-001 – École",
		Body:    "Bonjour,\r\nci-joint la facture.",
		Attachments: []Attachment{
			{Name: "invoice-INV-2025-001-2025-03-15.pdf", MIMEType: "application/pdf", Data: pdf},
		},
	}

	raw, err := BuildMIME("secretariat@example.com", msg, "frontier")
	require.NoError(t, err)

	parsed, parts, bodies := parseMIME(t, raw)

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Facture INV-2025-001 – École", subject)
	assert.Equal(t, `"Awa Diallo" <awa@example.com>`, parsed.Header.Get("To"))
	assert.Equal(t, "<compta@example.com>", parsed.Header.Get("Cc"))
	assert.Equal(t, "<secretariat@example.com>", parsed.Header.Get("From"))

	require.Len(t, parts, 2)
	assert.Equal(t, "Bonjour,\r\nci-joint la facture.", string(bodies[0]))
	assert.Equal(t, "invoice-INV-2025-001-2025-03-15.pdf", parts[1].FileName())
	assert.Equal(t, pdf, bodies[1])

	for _, line := range strings.Split(string(raw), "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}

func TestBuildMIME_Rejects(t *testing.T) {
	_, err := BuildMIME("", &Message{Subject: "x"}, "")
	assert.Error(t, err)

	_, err = BuildMIME("", &Message{To: []string{"not an address"}}, "")
	assert.Error(t, err)

	_, err = BuildMIME("nobody", &Message{To: []string{"a@example.com"}}, "")
	assert.Error(t, err)

	_, err = BuildMIME("", nil, "")
	assert.Error(t, err)
}

func TestInvoiceMessage(t *testing.T) {
	file := &documents.File{Name: "invoice-7-2025-03-15.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}

	msg := InvoiceMessage([]string{"parent@example.com"}, "INV-7", "Awa Diallo", "École Les Bambins", file)
	assert.Equal(t, "École Les Bambins - Facture INV-7", msg.Subject)
	assert.Contains(t, msg.Body, "INV-7 concernant Awa Diallo")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, file.Name, msg.Attachments[0].Name)

	bare := InvoiceMessage([]string{"parent@example.com"}, "INV-8", "", "", nil)
	assert.Equal(t, "Facture INV-8", bare.Subject)
	assert.Empty(t, bare.Attachments)
}

func TestNewGmailSender_NotConfigured(t *testing.T) {
	_, err := NewGmailSender(context.Background(), GmailConfig{ClientID: "id"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.True(t, GmailConfig{ClientID: "id", ClientSecret: "s", RefreshToken: "r"}.Configured())
}

func TestGmailSender_Send(t *testing.T) {
	var gotRaw string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Raw string `json:"raw"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotRaw = body.Raw
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-123","threadId":"t-1"}`))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender, err := newGmailSender(context.Background(), GmailConfig{From: "ecole@example.com"}, logger,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), &Message{To: []string{"parent@example.com"}, Subject: "Facture", Body: "ci-joint"})
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.True(t, strings.HasSuffix(gotPath, "/users/me/messages/send"), gotPath)

	raw, err := base64.URLEncoding.DecodeString(gotRaw)
	require.NoError(t, err)
	parsed, _, bodies := parseMIME(t, raw)
	assert.Equal(t, "<parent@example.com>", parsed.Header.Get("To"))
	assert.Equal(t, "ci-joint", string(bodies[0]))
}

func TestGmailSender_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	}))
	defer srv.Close()

	sender, err := newGmailSender(context.Background(), GmailConfig{}, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), &Message{To: []string{"parent@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient scope")
}
