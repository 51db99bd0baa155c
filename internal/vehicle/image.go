package vehicle

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/llm"
)

// Media types recognised by SniffMediaType.
const (
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaGIF  = "image/gif"
	MediaWEBP = "image/webp"
	MediaAVIF = "image/avif"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// SniffMediaType identifies an image from its leading bytes. Unknown formats are reported as JPEG.
func SniffMediaType(b []byte) string {
	switch {
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return MediaJPEG
	case bytes.HasPrefix(b, pngMagic):
		return MediaPNG
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return MediaGIF
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return MediaWEBP
	case len(b) >= 12 && bytes.Equal(b[4:8], []byte("ftyp")) &&
		(bytes.Equal(b[8:12], []byte("avif")) || bytes.Equal(b[8:12], []byte("avis"))):
		return MediaAVIF
	default:
		return MediaJPEG
	}
}

// DecodeImage turns a base64 payload, with or without a data URL prefix, into a model image.
func DecodeImage(payload string) (llm.Image, error) {
	data := strings.TrimSpace(payload)
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	data = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, data)
	if data == "" {
		return llm.Image{}, apperr.Invalid("image payload is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(data)
	}
	if err != nil {
		return llm.Image{}, apperr.Invalid("image payload is not valid base64")
	}
	return llm.Image{MediaType: SniffMediaType(raw), Data: data}, nil
}
