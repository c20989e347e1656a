package utils

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kamandenj/linkup_social/apperrors"
)

// DetectFileType sniffs the MIME type of raw attachment bytes. mimetype
// falls back to application/octet-stream when it cannot classify the
// content; that counts as a detection failure here, matching the contract
// that unsniffable uploads are rejected.
func DetectFileType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.UnknownType("empty file")
	}
	mime := mimetype.Detect(data)
	if mime.Is("application/octet-stream") {
		return "", apperrors.UnknownType("unable to determine the file type")
	}
	return mime.String(), nil
}

// IsImageType reports whether a detected MIME type is one of the image
// formats accepted for profile pictures and posts.
func IsImageType(mime string) bool {
	switch {
	case strings.HasPrefix(mime, "image/jpeg"),
		strings.HasPrefix(mime, "image/png"),
		strings.HasPrefix(mime, "image/gif"):
		return true
	}
	return false
}
