package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/response"
)

type BarcodeController struct {
	barcodes *services.BarcodeService
}

func NewBarcodeController(barcodes *services.BarcodeService) *BarcodeController {
	return &BarcodeController{barcodes: barcodes}
}

// Generate produces a fresh barcode for a product name. Uniqueness against
// the catalog is only enforced when the product itself is created.
func (c *BarcodeController) Generate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductName string `json:"productName" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}
	response.Success(w, map[string]string{"barcode": c.barcodes.Generate(in.ProductName)})
}

// GenerateBulk produces one barcode per submitted product name.
func (c *BarcodeController) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductNames []string `json:"productNames" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if len(in.ProductNames) == 0 {
		response.Error(w, http.StatusBadRequest, "productNames must not be empty")
		return
	}

	out := make(map[string]string, len(in.ProductNames))
	for _, name := range in.ProductNames {
		out[name] = c.barcodes.Generate(name)
	}
	response.Success(w, out)
}

// Format describes the barcode format rules for client-side validation.
func (c *BarcodeController) Format(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"type":      "CODE_128",
		"pattern":   "^[A-Z0-9]+$",
		"minLength": 6,
		"structure": "name prefix + timestamp + 3 random digits",
	})
}

// Validate checks a candidate against the barcode format rules.
func (c *BarcodeController) Validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	response.Success(w, map[string]interface{}{
		"barcode": code,
		"valid":   c.barcodes.Validate(code),
	})
}

// Image renders the barcode as a Code 128 PNG.
func (c *BarcodeController) Image(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !c.barcodes.Validate(code) {
		response.Error(w, http.StatusBadRequest, "invalid barcode")
		return
	}
	img, err := c.barcodes.Image(code)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img) //nolint:errcheck
}
