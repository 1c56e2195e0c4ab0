// Package imageproc provides image operations for the history thumbnails
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

const ThumbSize = 256

// Thumbnailer - вписывает картинку в квадрат size x size на прозрачном фоне, пропорции сохраняются
func Thumbnailer(r io.Reader, size int) (io.Reader, int64, error) {
	if r == nil {
		return nil, -1, errors.New("nil-reader baseIMG provided to Thumbnailer")
	}
	if size <= 0 {
		return nil, -1, fmt.Errorf("incorrect thumbnail size %d", size)
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to DEcode baseIMG in Thumbnailer: %w", err)
	}

	fitted := imaging.Fit(img, size, size, imaging.Lanczos)
	canvas := imaging.New(size, size, color.NRGBA{})
	thumb := imaging.PasteCenter(canvas, fitted)

	// PNG чтобы не потерять прозрачность вырезанного фона
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, 0, fmt.Errorf("failed to ENcode resultIMG in Thumbnailer: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}
