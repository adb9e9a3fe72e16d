// Package preview derives compressed WEBP previews from uploaded images.
package preview

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ErrGenerationFailed wraps any decode/encode failure. Callers treat it as
// "no preview available", never as a fatal error.
var ErrGenerationFailed = errors.New("preview generation failed")

// Generate decodes an image, normalizes its orientation from embedded EXIF
// metadata, reduces it to one of the two color modes WEBP lossy encoding
// accepts (opaque RGB or RGBA) and re-encodes it at the given lossy quality.
// The caller owns the quality value so it stays in lockstep with the cache
// keys derived from it.
func Generate(original []byte, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrGenerationFailed, err)
	}

	// Clone yields NRGBA regardless of the source color model
	nrgba := imaging.Clone(img)

	var data []byte
	if nrgba.Opaque() {
		data, err = webp.EncodeRGB(nrgba, float32(quality))
	} else {
		data, err = webp.EncodeRGBA(nrgba, float32(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrGenerationFailed, err)
	}
	return data, nil
}
