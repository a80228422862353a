package imagery

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/spacesedan/newscard/internal/models"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI renders the payload as data:<mime>;base64,<data>.
func DataURI(p models.ImagePayload) string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// ParseDataURI is the inverse of DataURI. Only base64 data URIs are accepted.
func ParseDataURI(s string) (models.ImagePayload, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return models.ImagePayload{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return models.ImagePayload{}, fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return models.ImagePayload{}, fmt.Errorf("%w: only base64 encoding is supported", ErrInvalidDataURI)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return models.ImagePayload{MIMEType: mime, Data: raw}, nil
}

// Decode turns the payload into an image. JPEG, PNG, GIF and WebP are registered.
func Decode(p models.ImagePayload) (image.Image, error) {
	if len(p.Data) == 0 {
		return nil, errors.New("[Imagery] empty image payload")
	}
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("[Imagery] decode %s payload: %w", p.MIMEType, err)
	}
	return img, nil
}
