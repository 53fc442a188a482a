package announce

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxAttachmentSize caps the downloaded attachment body. Exchange filings
// above this size are almost always scanned image PDFs with no usable text.
const maxAttachmentSize = 20 * 1024 * 1024

const attachmentUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// AttachmentText downloads an announcement attachment and extracts its plain
// text. Only PDF attachments are supported. The result is truncated to
// maxChars when positive.
func (s *Service) AttachmentText(ctx context.Context, documentURL string, maxChars int) (string, error) {
	if documentURL == "" {
		return "", fmt.Errorf("no document URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment request: %w", err)
	}
	req.Header.Set("User-Agent", attachmentUserAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	s.logger.Debug().Str("url", documentURL).Msg("Downloading attachment")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("attachment download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("attachment download failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read attachment body: %w", err)
	}
	if len(body) > maxAttachmentSize {
		return "", fmt.Errorf("attachment exceeds %d bytes", maxAttachmentSize)
	}

	text, err := extractPDFText(body)
	if err != nil {
		return "", err
	}

	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

// extractPDFText pulls the plain text layer out of a PDF body.
func extractPDFText(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text layer in PDF")
	}
	return text, nil
}
