package ticket

import (
	"image/color"

	"github.com/skip2/go-qrcode"
)

// Encoder renders tokens into scannable QR images. The output is an
// uncompressed-lossless PNG, pure black modules on a pure white
// background, with the library's standard quiet-zone border kept so
// cameras can lock onto the symbol.
type Encoder struct {
	size int // edge length of the rendered image in pixels
}

// DefaultQRSize is large enough for reliable scanning from a phone screen.
const DefaultQRSize = 512

// NewEncoder returns an Encoder rendering images of the given pixel size.
// Sizes below the default are clamped up; a QR too small to scan defeats
// the point of issuing it.
func NewEncoder(size int) *Encoder {
	if size < DefaultQRSize {
		size = DefaultQRSize
	}
	return &Encoder{size: size}
}

// Render encodes the token payload into a QR PNG. Medium error correction
// matches typical venue scanning conditions.
func (e *Encoder) Render(t Token) ([]byte, error) {
	payload, err := t.Encode()
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White
	return q.PNG(e.size)
}
