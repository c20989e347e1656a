package utils

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
)

const profilePictureSize = 1080

// ResizeProfilePicture center-crops and scales an image to a 1080x1080
// square. GIFs pass through untouched so animations survive.
func ResizeProfilePicture(data []byte, mime string) ([]byte, error) {
	if strings.HasPrefix(mime, "image/gif") {
		return data, nil
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	resized := imaging.Fill(src, profilePictureSize, profilePictureSize, imaging.Center, imaging.Lanczos)

	format := imaging.JPEG
	if strings.HasPrefix(mime, "image/png") {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(75)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
