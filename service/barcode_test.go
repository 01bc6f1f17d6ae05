package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBarcodeReaderQRCode(t *testing.T) {
	matrix, err := qrcode.NewQRCodeWriter().Encode("BE-778899", gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)

	text, err := NewBarcodeReader().Decode(encodePNG(t, matrix))
	require.NoError(t, err)
	assert.Equal(t, "BE-778899", text)
}

func TestBarcodeReaderBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(color.White.Y >> 8)
	}

	_, err := NewBarcodeReader().Decode(encodePNG(t, img))
	assert.ErrorIs(t, err, ErrNoBarcode)
}

func TestBarcodeReaderNotAnImage(t *testing.T) {
	_, err := NewBarcodeReader().Decode([]byte("%PDF-1.4"))
	assert.Error(t, err)
}
