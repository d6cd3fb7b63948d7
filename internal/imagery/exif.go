package imagery

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Meta holds camera metadata extracted from an uploaded photo. Only JPEG
// payloads carry EXIF; for other formats Inspect reports ok = false.
type Meta struct {
	Width       int
	Height      int
	CameraMake  string
	CameraModel string
	CapturedAt  time.Time
}

// Inspect decodes EXIF metadata from the image bytes. Absent or unreadable
// metadata is not an error: ok reports whether anything usable was found.
func Inspect(data []byte) (Meta, bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Meta{}, false
	}

	var m Meta
	found := false
	if w, err := tagInt(x, exif.PixelXDimension); err == nil {
		m.Width = w
		found = true
	}
	if h, err := tagInt(x, exif.PixelYDimension); err == nil {
		m.Height = h
		found = true
	}
	if s, err := tagString(x, exif.Make); err == nil {
		m.CameraMake = s
		found = true
	}
	if s, err := tagString(x, exif.Model); err == nil {
		m.CameraModel = s
		found = true
	}
	if t, err := x.DateTime(); err == nil {
		m.CapturedAt = t
		found = true
	}
	return m, found
}

func tagInt(x *exif.Exif, name exif.FieldName) (int, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}
	return tag.Int(0)
}

func tagString(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", err
	}
	return s, nil
}
