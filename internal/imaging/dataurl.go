package imaging

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const defaultMimeType = "image/png"

var dataURLRegex = regexp.MustCompile(`^data:([^;,]+);base64,`)

// Envelope wraps an already base64-encoded payload in a data URL.
func Envelope(mimeType, base64Payload string) string {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Payload)
}

// EncodeBytes encodes raw image bytes as a self-describing data URL.
func EncodeBytes(data []byte, mimeType string) string {
	return Envelope(mimeType, base64.StdEncoding.EncodeToString(data))
}

// MimeType extracts the mime type from a data URL. It returns image/png when
// the prefix is absent or malformed.
func MimeType(encoded string) string {
	if matches := dataURLRegex.FindStringSubmatch(strings.TrimSpace(encoded)); len(matches) == 2 {
		return matches[1]
	}
	return defaultMimeType
}

// StripEnvelope returns the payload after the data URL prefix, or the input
// unchanged when there is no prefix.
func StripEnvelope(encoded string) string {
	if idx := strings.IndexByte(encoded, ','); idx >= 0 {
		return encoded[idx+1:]
	}
	return encoded
}
