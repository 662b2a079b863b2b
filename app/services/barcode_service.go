package services

import (
	"bytes"
	"fmt"
	"image/png"
	"math/rand"
	"regexp"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

var barcodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// BarcodeService generates and renders Code 128 product barcodes.
type BarcodeService struct{}

func NewBarcodeService() *BarcodeService {
	return &BarcodeService{}
}

// Generate derives a barcode from the product name: a short name prefix, the
// trailing digits of the current timestamp and three random digits. Uniqueness
// against the catalog is the caller's job.
func (s *BarcodeService) Generate(productName string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(productName), ""))
	n := 3
	if len(cleaned) < n {
		n = len(cleaned)
	}
	return cleaned[:n] + timestampSuffix() + fmt.Sprintf("%03d", rand.Intn(1000))
}

// Validate reports whether a barcode matches the expected format: at least
// six characters, uppercase letters and digits only.
func (s *BarcodeService) Validate(code string) bool {
	return len(code) >= 6 && barcodePattern.MatchString(code)
}

// Image renders the barcode as a 300x100 Code 128 PNG.
func (s *BarcodeService) Image(code string) ([]byte, error) {
	if !s.Validate(code) {
		return nil, errBadRequest("invalid barcode format: %s", code)
	}

	bc, err := code128.Encode(code)
	if err != nil {
		return nil, errBadRequest("barcode cannot be encoded: %v", err)
	}

	scaled, err := barcode.Scale(bc, 300, 100)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
