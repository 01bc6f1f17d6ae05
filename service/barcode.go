package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoBarcode is returned when none of the readers found a code.
var ErrNoBarcode = errors.New("no barcode found")

// BarcodeReader looks for a QR or Code 128 symbol on a scanned document.
// Customs and e-invoice printouts usually carry one with the document number.
type BarcodeReader interface {
	Decode(imageData []byte) (string, error)
}

type barcodeReader struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

func NewBarcodeReader() BarcodeReader {
	return &barcodeReader{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			oned.NewCode128Reader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (b *barcodeReader) Decode(imageData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image: %w", err)
	}
	for _, reader := range b.readers {
		result, err := reader.Decode(bmp, b.hints)
		if err == nil && result.GetText() != "" {
			return result.GetText(), nil
		}
	}
	return "", ErrNoBarcode
}
