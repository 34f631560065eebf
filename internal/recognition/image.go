package recognition

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrEmptyImage   = errors.New("image payload is empty")
	ErrInvalidImage = errors.New("image payload cannot be decoded")
)

// RawImage is an encoded raster as received from a client: a camera frame or
// a rendered drawing canvas.
type RawImage struct {
	Data []byte
}

// ParseRawImage accepts either plain base64 or a data URL such as
// "data:image/png;base64,iVBOR...".
func ParseRawImage(payload string) (RawImage, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return RawImage{}, ErrEmptyImage
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return RawImage{}, fmt.Errorf("%w: data URL must be base64 encoded", ErrInvalidImage)
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return RawImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return RawImage{}, ErrEmptyImage
	}

	return RawImage{Data: data}, nil
}

// CheckSize reads only the image header and rejects rasters whose pixel
// count exceeds maxPixels. A non-positive maxPixels disables the check.
func (r RawImage) CheckSize(maxPixels int) error {
	if len(r.Data) == 0 {
		return ErrEmptyImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: image has no pixels", ErrInvalidImage)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// Decode checks the header against maxPixels, then decodes the raster
// honouring the EXIF orientation of camera photos.
func (r RawImage) Decode(maxPixels int) (image.Image, error) {
	if err := r.CheckSize(maxPixels); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(r.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}
