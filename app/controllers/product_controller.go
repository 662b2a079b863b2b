package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/response"

	"github.com/go-chi/chi/v5"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Create registers a new product for the authenticated supplier.
// It starts in PENDING until an admin reviews it.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	supplierID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	product, err := c.products.Create(r.Context(), supplierID, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	supplierID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	product, err := c.products.Update(r.Context(), id, supplierID, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	supplierID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := c.products.Delete(r.Context(), id, supplierID); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "product deleted"})
}

// Approve moves a pending product into the catalog.
func (c *ProductController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	adminID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	product, err := c.products.Approve(r.Context(), id, adminID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

// Reject declines a pending product with a reason relayed to the supplier.
func (c *ProductController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in struct {
		Reason string `json:"reason" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	adminID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	product, err := c.products.Reject(r.Context(), id, adminID, in.Reason)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

// UpdateStock applies a signed quantity delta to an approved product.
func (c *ProductController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in struct {
		Delta int `json:"delta" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.UpdateStock(r.Context(), id, in.Delta)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	product, err := c.products.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := c.products.GetByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	var (
		products []models.Product
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		products, err = c.products.ByStatus(r.Context(), status)
	} else {
		products, err = c.products.All(r.Context())
	}
	c.respondList(w, r, products, err)
}

func (c *ProductController) Pending(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Pending(r.Context())
	c.respondList(w, r, products, err)
}

func (c *ProductController) Approved(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Approved(r.Context())
	c.respondList(w, r, products, err)
}

// Available lists approved products that have stock on hand.
func (c *ProductController) Available(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Available(r.Context())
	c.respondList(w, r, products, err)
}

// Mine lists the authenticated supplier's own products in every status.
func (c *ProductController) Mine(w http.ResponseWriter, r *http.Request) {
	supplierID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	products, err := c.products.BySupplier(r.Context(), supplierID)
	c.respondList(w, r, products, err)
}

func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Search(r.Context(), r.URL.Query().Get("q"))
	c.respondList(w, r, products, err)
}

func (c *ProductController) ByPriceRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	min, err1 := strconv.ParseFloat(q.Get("min"), 64)
	max, err2 := strconv.ParseFloat(q.Get("max"), 64)
	if err1 != nil || err2 != nil {
		response.Error(w, http.StatusBadRequest, "min and max query parameters are required")
		return
	}
	products, err := c.products.ByPriceRange(r.Context(), min, max)
	c.respondList(w, r, products, err)
}

// Expiring lists products whose best-before date falls within the next N days
// (default 7).
func (c *ProductController) Expiring(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.Error(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	now := time.Now().UTC()
	products, err := c.products.ExpiringBetween(r.Context(), now, now.AddDate(0, 0, days))
	c.respondList(w, r, products, err)
}

func (c *ProductController) Expired(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Expired(r.Context())
	c.respondList(w, r, products, err)
}

// LowStock lists products at or below the threshold (default 10).
func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.Error(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = n
	}
	products, err := c.products.LowStock(r.Context(), threshold)
	c.respondList(w, r, products, err)
}

func (c *ProductController) respondList(w http.ResponseWriter, r *http.Request, products []models.Product, err error) {
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, products)
}
