package attachment

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mime string
		data []byte
	}{
		{name: "pdf", mime: "application/pdf", data: []byte("%PDF-1.4 fake question paper")},
		{name: "png", mime: "image/png", data: []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00}},
		{name: "empty file", mime: "text/plain", data: []byte{}},
		{name: "default mime", mime: "", data: []byte("answer script")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Encode(bytes.NewReader(tt.data), tt.mime)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !strings.HasPrefix(payload, "data:") {
				t.Fatalf("payload missing data URL prefix: %q", payload)
			}

			mime, data, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			wantMime := tt.mime
			if wantMime == "" {
				wantMime = "application/octet-stream"
			}
			if mime != wantMime {
				t.Errorf("mime = %q, want %q", mime, wantMime)
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("data round trip mismatch: got %d bytes, want %d", len(data), len(tt.data))
			}
		})
	}
}

func TestEncodeReadError(t *testing.T) {
	if _, err := Encode(failingReader{}, "text/plain"); !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "garbage", payload: "not a payload at all"},
		{name: "remote locator", payload: "https://papers.example.com/week3.pdf"},
		{name: "missing comma", payload: "data:text/plain;base64"},
		{name: "not base64 form", payload: "data:text/plain,hello"},
		{name: "invalid base64", payload: "data:text/plain;base64,!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.payload); !errors.Is(err, ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	if !IsRemote("http://example.com/a.pdf") || !IsRemote("https://example.com/a.pdf") {
		t.Error("http locators should be remote")
	}
	if IsRemote("data:text/plain;base64,aGk=") {
		t.Error("data URL should not be remote")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}
