// Package exif extracts a best-effort capture timestamp and GPS position
// from image files. Extraction never fails: anything unreadable simply
// yields an empty Metadata.
package exif

import (
	"io"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the best-effort record pulled from an image file. Any field may
// be absent.
type Metadata struct {
	TakenAt   *time.Time
	Latitude  *float64
	Longitude *float64
}

// Extract reads EXIF tags from r. Missing tags, corrupt data, and unsupported
// formats all yield an empty Metadata rather than an error.
func Extract(r io.Reader) (m Metadata) {
	// goexif is known to panic on some malformed tag payloads.
	defer func() {
		if recover() != nil {
			m = Metadata{}
		}
	}()

	x, err := exif.Decode(r)
	if err != nil {
		return Metadata{}
	}

	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if raw, err := tag.StringVal(); err == nil {
			if t, ok := ParseDateTime(raw); ok {
				m.TakenAt = &t
			}
		}
	}

	lat, okLat := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	lng, okLng := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if okLat && okLng {
		m.Latitude = &lat
		m.Longitude = &lng
	}

	return m
}

// ParseDateTime parses the EXIF "DateTimeOriginal" layout
// ("2006:01:02 15:04:05") as local time. Malformed input yields ok=false,
// never a partially parsed date.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.Trim(s, "\x00"))
	t, err := time.ParseInLocation("2006:01:02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DecimalDegrees combines a degrees/minutes/seconds triple into signed
// decimal degrees. A "S" or "W" reference negates the result.
func DecimalDegrees(deg, min, sec float64, ref string) float64 {
	dd := deg + min/60 + sec/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -dd
	}
	return dd
}

func coordinate(x *exif.Exif, field, refField exif.FieldName) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}

	parts := make([]float64, 3)
	for i := range parts {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return 0, false
		}
		parts[i] = float64(num) / float64(den)
	}

	ref := ""
	if refTag, err := x.Get(refField); err == nil {
		if v, err := refTag.StringVal(); err == nil {
			ref = v
		}
	}

	return DecimalDegrees(parts[0], parts[1], parts[2], ref), true
}
