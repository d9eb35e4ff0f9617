package services

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// AvatarMaxBytes is the upload size ceiling.
	AvatarMaxBytes = 1_000_000

	// AvatarSize is the side length of the stored square raster.
	AvatarSize = 250
)

var ErrUnsupportedImage = errors.New("unsupported image upload")

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// AllowedAvatarExt reports whether the uploaded filename carries an accepted
// image extension. Checked before any decoding happens.
func AllowedAvatarExt(filename string) bool {
	return allowedAvatarExts[strings.ToLower(filepath.Ext(filename))]
}

// NormalizeAvatar decodes an uploaded image and re-renders it as a 250x250
// PNG, cropping to cover the square. The returned bytes are what gets stored
// in the user document.
func NormalizeAvatar(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	thumb := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
