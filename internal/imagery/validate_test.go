package imagery

import (
	"strings"
	"testing"
	"time"

	"cardgen_backend/platform/apperr"
)

type testUploadConfig struct{}

func (testUploadConfig) GetMaxFileSize() int64 { return 1024 }

func (testUploadConfig) GetAllowedImageFormats() []string {
	return []string{"jpg", "jpeg", "png", "webp"}
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
}

func pngBytes() []byte {
	sig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	return append(sig, make([]byte, 16)...)
}

func TestValidateAcceptsJPEGUpload(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	f, err := v.Validate("photo.JPG", jpegBytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Ext != "jpg" {
		t.Fatalf("expected ext jpg, got %q", f.Ext)
	}
	if f.MIME != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", f.MIME)
	}
}

func TestValidateTrustsSniffedTypeOverExtension(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	f, err := v.Validate("cover.jpg", pngBytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MIME != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", f.MIME)
	}
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	data := append(jpegBytes(), make([]byte, 2048)...)
	_, err := v.Validate("photo.jpg", data)
	if err == nil {
		t.Fatal("expected an error for an oversized file")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Размер файла превышает лимит") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	_, err := v.Validate("scan.gif", []byte("GIF89a\x00\x00"))
	if err == nil {
		t.Fatal("expected an error for a disallowed extension")
	}
	if !strings.Contains(err.Error(), "Неподдерживаемый формат файла: gif") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateRejectsNonImagePayload(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	_, err := v.Validate("notes.png", []byte("просто текст, никакой картинки"))
	if err == nil {
		t.Fatal("expected an error for a non-image payload")
	}
	if !strings.Contains(err.Error(), "не является изображением") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	v := NewValidator(testUploadConfig{})

	_, err := v.Validate("photo.jpg", nil)
	if err == nil {
		t.Fatal("expected an error for an empty file")
	}
	if !strings.Contains(err.Error(), "пустой файл") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestObjectKeyIsDatePartitioned(t *testing.T) {
	fixed := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

	key := objectKey(fixed, "png")
	if !strings.HasPrefix(key, "2026/03/") {
		t.Fatalf("expected key under 2026/03/, got %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected .png suffix, got %q", key)
	}
	// Prefix + UUID + extension, nothing else.
	if want := len("2026/03/") + 36 + len(".png"); len(key) != want {
		t.Fatalf("expected key length %d, got %d (%q)", want, len(key), key)
	}
}

func TestInspectReportsNothingForPlainPNG(t *testing.T) {
	if _, ok := Inspect(pngBytes()); ok {
		t.Fatal("expected no metadata for a PNG without EXIF")
	}
}
