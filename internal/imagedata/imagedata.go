// Package imagedata converts between data-URL strings and the structured
// record the rest of the service works with.
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrFormat reports a string that does not follow the
// data:<mediaType>;base64,<payload> structure.
var ErrFormat = errors.New("imagedata: malformed data URL")

const scheme = "data:"

// Record holds decoded image data: a base64 payload plus its media type.
// Immutable once constructed.
type Record struct {
	Data      string `json:"data"`
	MediaType string `json:"mediaType"`
}

// Decode parses a data URL into a Record. No partial record is ever returned.
func Decode(dataURL string) (Record, error) {
	value := strings.TrimSpace(dataURL)
	if !strings.HasPrefix(value, scheme) {
		return Record{}, fmt.Errorf("%w: missing %q scheme", ErrFormat, scheme)
	}
	rest := value[len(scheme):]
	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		return Record{}, fmt.Errorf("%w: missing %q separator", ErrFormat, ";")
	}
	comma := strings.IndexByte(rest, ',')
	if comma < 0 || comma < semi {
		return Record{}, fmt.Errorf("%w: missing %q separator", ErrFormat, ",")
	}
	mediaType := rest[:semi]
	if mediaType == "" {
		return Record{}, fmt.Errorf("%w: empty media type", ErrFormat)
	}
	payload := rest[comma+1:]
	if payload == "" {
		return Record{}, fmt.Errorf("%w: empty payload", ErrFormat)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return Record{}, fmt.Errorf("%w: invalid base64 payload", ErrFormat)
	}
	return Record{Data: payload, MediaType: mediaType}, nil
}

// Encode renders the record back into a data URL. The inverse of Decode for
// any well-formed record.
func Encode(r Record) string {
	return scheme + r.MediaType + ";base64," + r.Data
}

// FromBytes wraps raw image bytes into a Record.
func FromBytes(data []byte, mediaType string) Record {
	return Record{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}
}

// Bytes returns the decoded payload.
func (r Record) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", ErrFormat)
	}
	return data, nil
}

// IsZero reports whether the record carries no image.
func (r Record) IsZero() bool {
	return r.Data == "" && r.MediaType == ""
}

// Extension maps the media type to a file extension for downloads.
func (r Record) Extension() string {
	switch strings.ToLower(strings.TrimSpace(r.MediaType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
