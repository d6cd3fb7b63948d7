// Package imagery validates, inspects and archives uploaded product photos.
// The generation pipeline never decodes pixels; this package checks that the
// bytes really are an image before they are sent upstream or stored.
package imagery

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"cardgen_backend/platform/apperr"
)

// Format describes a validated image: the normalized file extension and the
// content type sniffed from the actual bytes.
type Format struct {
	Ext  string
	MIME string
}

// Config defines the configuration surface the validator needs.
type Config interface {
	GetMaxFileSize() int64
	GetAllowedImageFormats() []string
}

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// Validator checks uploaded files against the configured size and format
// limits and verifies the payload is a real image.
type Validator struct {
	maxFileSize int64
	allowedExts map[string]bool
}

// NewValidator creates a validator from the upload configuration.
func NewValidator(cfg Config) *Validator {
	allowed := make(map[string]bool)
	for _, f := range cfg.GetAllowedImageFormats() {
		allowed[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return &Validator{
		maxFileSize: cfg.GetMaxFileSize(),
		allowedExts: allowed,
	}
}

// Validate checks size, extension and sniffed content type. The returned
// Format carries the sniffed MIME type, not the one the client claimed.
func (v *Validator) Validate(filename string, data []byte) (Format, error) {
	if len(data) == 0 {
		return Format{}, apperr.Validation("Ошибка валидации изображения: пустой файл")
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return Format{}, apperr.Validation(fmt.Sprintf("Размер файла превышает лимит: %d > %d", len(data), v.maxFileSize))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !v.allowedExts[ext] {
		return Format{}, apperr.Validation(fmt.Sprintf("Неподдерживаемый формат файла: %s", ext))
	}

	sniffed := sniffMIME(data)
	if !allowedMIME(sniffed, v.allowedExts) {
		return Format{}, apperr.Validation(fmt.Sprintf("Ошибка валидации изображения: содержимое файла не является изображением (%s)", sniffed))
	}

	return Format{Ext: ext, MIME: sniffed}, nil
}

func sniffMIME(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := http.DetectContentType(head)
	// Strip parameters such as "; charset=utf-8".
	return strings.TrimSpace(strings.Split(mime, ";")[0])
}

// allowedMIME reports whether the sniffed type corresponds to one of the
// allowed extensions. A .png upload containing JPEG bytes still passes, as
// long as both formats are allowed; what matters is that the payload is one
// of the accepted image types.
func allowedMIME(sniffed string, allowedExts map[string]bool) bool {
	for ext := range allowedExts {
		if mimeByExt[ext] == sniffed {
			return true
		}
	}
	return false
}
