package mailer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
)

const lineLength = 76

// BuildMIME encodes msg as an RFC 5322 message with a multipart/mixed body.
// Empty boundary lets the multipart writer pick a random one.
func BuildMIME(from string, msg *Message, boundary string) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("no message")
	}
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipient")
	}

	to, err := formatAddresses(msg.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if boundary != "" {
		if err := mw.SetBoundary(boundary); err != nil {
			return nil, fmt.Errorf("invalid boundary: %w", err)
		}
	}

	var out bytes.Buffer
	writeHeader := func(key, value string) {
		fmt.Fprintf(&out, "%s: %s\r\n", key, value)
	}

	if from != "" {
		addr, err := mail.ParseAddress(from)
		if err != nil {
			return nil, fmt.Errorf("invalid sender: %w", err)
		}
		writeHeader("From", addr.String())
	}
	writeHeader("To", to)
	if len(msg.Cc) > 0 {
		cc, err := formatAddresses(msg.Cc)
		if err != nil {
			return nil, fmt.Errorf("invalid cc: %w", err)
		}
		writeHeader("Cc", cc)
	}
	if msg.ReplyTo != "" {
		addr, err := mail.ParseAddress(msg.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
		writeHeader("Reply-To", addr.String())
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	out.WriteString("\r\n")

	text := textproto.MIMEHeader{}
	text.Set("Content-Type", "text/plain; charset=utf-8")
	text.Set("Content-Transfer-Encoding", "base64")
	part, err := mw.CreatePart(text)
	if err != nil {
		return nil, err
	}
	if err := writeBase64(part, []byte(msg.Body)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		mimeType := a.MIMEType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", mime.FormatMediaType(mimeType, map[string]string{"name": a.Name}))
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
		h.Set("Content-Transfer-Encoding", "base64")

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", a.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func formatAddresses(list []string) (string, error) {
	addrs, err := mail.ParseAddressList(strings.Join(list, ", "))
	if err != nil {
		return "", err
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", "), nil
}

// writeBase64 writes data base64 encoded in CRLF terminated lines
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := lineLength
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
