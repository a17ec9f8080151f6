package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

// EncodeUpload validates uploaded file bytes and encodes them as a data URL.
// The declared mime type is trusted only when the bytes cannot be sniffed to
// something more specific.
func EncodeUpload(data []byte, declaredMime string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrRead)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %s", ErrRead, err)
	}

	return EncodeBytes(data, normalizeMimeType(declaredMime, data)), nil
}

func normalizeMimeType(declared string, data []byte) string {
	mimeType := stripMimeParams(declared)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = stripMimeParams(http.DetectContentType(data))
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = defaultMimeType
	}
	return mimeType
}

func stripMimeParams(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}
