package ai

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// defaultImageMIMEType is used when the file content is not recognised as an image.
const defaultImageMIMEType = "image/jpeg"

// EncodedImage is a local image file read into memory and base64 encoded,
// ready to be embedded in a chat payload.
type EncodedImage struct {
	Path     string
	MIMEType string
	Data     []byte
	Base64   string
}

// DataURI returns the image as a data URI ("data:image/png;base64,...").
func (img EncodedImage) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64
}

// EncodeImage reads the file at path and base64 encodes it. The MIME type is
// sniffed from the content; anything that is not an image is labelled image/jpeg.
func EncodeImage(path string) (EncodedImage, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an image chosen by the caller
	if err != nil {
		return EncodedImage{}, fmt.Errorf("error reading image %q: %w", path, err)
	}

	mimeType := mimetype.Detect(data).String()
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = defaultImageMIMEType
	}

	return EncodedImage{
		Path:     path,
		MIMEType: mimeType,
		Data:     data,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

// EncodeImages encodes every path in order, stopping at the first failure.
func EncodeImages(paths []string) ([]EncodedImage, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	images := make([]EncodedImage, 0, len(paths))
	for _, path := range paths {
		image, err := EncodeImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}
