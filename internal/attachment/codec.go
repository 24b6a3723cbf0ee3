// Package attachment converts file payloads to and from the self-describing
// data-URL form embedded in assignment documents.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	dataURLPrefix = "data:"
	defaultMime   = "application/octet-stream"
)

var (
	// ErrFormat is returned when a payload is neither a data URL nor a
	// remote http(s) locator.
	ErrFormat = errors.New("attachment: unrecognized payload format")

	// ErrRead wraps failures of the underlying byte source during encoding.
	ErrRead = errors.New("attachment: read failed")
)

// Encode reads all bytes from r and produces "data:<mime>;base64,<payload>".
// An empty mimeType falls back to application/octet-stream.
func Encode(r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	if mimeType == "" {
		mimeType = defaultMime
	}
	return dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeFile encodes the file at path, sniffing the media type from its
// leading bytes.
func EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return dataURLPrefix + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsRemote reports whether the payload is a plain http(s) locator. Remote
// payloads are opened directly by the client rather than decoded, so Decode
// refuses them.
func IsRemote(payload string) bool {
	return strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://")
}

// Decode is the inverse of Encode. It returns the embedded media type and the
// raw bytes. Remote locators and anything else that is not a data URL fail
// with ErrFormat.
func Decode(payload string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(payload, dataURLPrefix) {
		return "", nil, ErrFormat
	}

	meta, encoded, ok := strings.Cut(payload[len(dataURLPrefix):], ",")
	if !ok {
		return "", nil, ErrFormat
	}

	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == meta {
		// Only the base64 embedded form is produced by Encode; plain
		// text data URLs are out of scope.
		return "", nil, ErrFormat
	}
	if mimeType == "" {
		mimeType = defaultMime
	}

	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return mimeType, data, nil
}
