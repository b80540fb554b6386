package content

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/h2non/filetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
	markdown     = goldmark.New()
)

// ImagePlaceholder is shown as a conversation summary for image messages.
const ImagePlaceholder = "[image]"

const previewMaxRunes = 120

var ErrNotImage = errors.New("payload is not an image")

// Sanitize removes unsafe HTML from the input string using a strict policy.
// It is used for sanitizing user-entered message text.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// Preview collapses message text into a single plain-text line suitable for
// a conversation summary. Markdown is rendered first so markup characters do
// not leak into the preview.
func Preview(input string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		buf.Reset()
		buf.WriteString(input)
	}

	plain := html.UnescapeString(strictPolicy.Sanitize(buf.String()))
	plain = strings.Join(strings.Fields(plain), " ")

	runes := []rune(plain)
	if len(runes) > previewMaxRunes {
		plain = string(runes[:previewMaxRunes]) + "..."
	}
	return plain
}

// ValidateImageDataURI checks that input is a base64 data URI whose payload
// is a real image, and returns the detected MIME type.
func ValidateImageDataURI(input string) (string, error) {
	rest, ok := strings.CutPrefix(input, "data:")
	if !ok {
		return "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", errors.New("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", errors.New("data URI must be base64 encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode data URI payload: %w", err)
	}

	kind, err := filetype.Match(raw)
	if err != nil {
		return "", fmt.Errorf("failed to detect payload type: %w", err)
	}
	if kind == filetype.Unknown || !filetype.IsImage(raw) {
		return "", ErrNotImage
	}
	return kind.MIME.Value, nil
}
