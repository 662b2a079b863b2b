package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeGenerateFormat(t *testing.T) {
	svc := NewBarcodeService()

	assert.Regexp(t, `^COF\d+$`, svc.Generate("Coffee Beans 500g"))
	assert.Regexp(t, `^OJ\d+$`, svc.Generate("OJ"))
	assert.Regexp(t, `^MIL\d+$`, svc.Generate("  milk   carton "))
}

func TestBarcodeGenerateIsValid(t *testing.T) {
	svc := NewBarcodeService()

	for _, name := range []string{"Coffee", "Whole Milk 1L", "x"} {
		code := svc.Generate(name)
		assert.True(t, svc.Validate(code), "generated %q from %q", code, name)
	}
}

func TestBarcodeValidate(t *testing.T) {
	svc := NewBarcodeService()

	assert.True(t, svc.Validate("ABC123"))
	assert.True(t, svc.Validate("MIL17000000123001"))

	assert.False(t, svc.Validate("AB12"))      // too short
	assert.False(t, svc.Validate("abc123x"))   // lowercase
	assert.False(t, svc.Validate("ABC 123"))   // whitespace
	assert.False(t, svc.Validate("ABC-12345")) // punctuation
	assert.False(t, svc.Validate(""))
}

func TestBarcodeImage(t *testing.T) {
	svc := NewBarcodeService()

	img, err := svc.Image("MIL17000000123001")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n")))

	var ce *ClientError
	_, err = svc.Image("bad code")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
}
