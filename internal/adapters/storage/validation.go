package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// AllowedImageTypes are the photo formats accepted for upload.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NormalizeContentType lowercases contentType and drops parameters like charset.
func NormalizeContentType(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}

// ValidateImage checks content type and size against maxSize.
func ValidateImage(contentType string, sizeBytes, maxSize int64) error {
	if _, ok := AllowedImageTypes[NormalizeContentType(contentType)]; !ok {
		return fmt.Errorf("%w: content type %q is not allowed", ErrRejected, contentType)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("%w: file is empty", ErrRejected)
	}
	if maxSize > 0 && sizeBytes > maxSize {
		return fmt.Errorf("%w: file size %d bytes exceeds maximum of %d bytes", ErrRejected, sizeBytes, maxSize)
	}
	return nil
}

// objectName keeps the original base name readable and makes the key unique.
func objectName(fileName, contentType, suffix string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = AllowedImageTypes[NormalizeContentType(contentType)]
	}
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(fileName, "\\", "/")), path.Ext(fileName))
	if base == "" || base == "." || base == "/" {
		base = "photo"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	return fmt.Sprintf("%s_%s%s", base, suffix, ext)
}
