package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// ImageSize is the rendered QR image width and height in pixels.
const ImageSize = 256

// Encode renders a locker code into a PNG QR image. Medium error
// correction keeps the image scannable on printed labels.
func Encode(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("encoding QR image: empty code")
	}

	png, err := qrcode.Encode(code, qrcode.Medium, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("encoding QR image for %q: %w", code, err)
	}
	return png, nil
}
