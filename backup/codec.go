package backup

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrMalformedBackup is wrapped by every decode failure: invalid base64,
// invalid JSON, or a document missing its required top-level keys.
var ErrMalformedBackup = errors.New("malformed backup file")

// Encode serializes the document and wraps it in standard base64. The
// output is plain ASCII regardless of the content, so the blob survives
// any text-mode transport. This is obfuscation, not encryption.
func Encode(doc Document) (string, error) {
	payload, err := sonic.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decode reverses Encode. Surrounding whitespace is tolerated since files
// re-saved by editors commonly gain a trailing newline.
func Decode(text string) (Document, error) {
	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	var doc Document
	if err := sonic.Unmarshal(payload, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	if doc.Metadata == (Metadata{}) || doc.Columns == nil || doc.Tasks == nil {
		return Document{}, fmt.Errorf("%w: missing metadata, columns or tasks", ErrMalformedBackup)
	}
	return doc, nil
}
