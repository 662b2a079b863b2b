package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/metrics"
	"github.com/shashiranjanraj/emart/pkg/response"
)

type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

// Sign attaches the admin's digital signature to a draft invoice.
// When no signature payload is supplied one is derived server-side.
func (c *InvoiceController) Sign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in struct {
		SignatureData string `json:"signatureData"`
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

	invoice, err := c.invoices.Sign(r.Context(), id, adminID, in.SignatureData)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoice)
}

// Send renders the invoice document, stores it and emails it to the customer.
func (c *InvoiceController) Send(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	invoice, err := c.invoices.Send(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.InvoicesSent.Inc()
	response.Success(w, invoice)
}

func (c *InvoiceController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in struct {
		Status string `json:"status" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	invoice, err := c.invoices.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoice)
}

func (c *InvoiceController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	invoice, err := c.invoices.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoice)
}

func (c *InvoiceController) GetByNumber(w http.ResponseWriter, r *http.Request) {
	invoice, err := c.invoices.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoice)
}

func (c *InvoiceController) ByOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	invoice, err := c.invoices.GetByOrderID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoice)
}

// Document serves the stored HTML rendering of a sent invoice.
func (c *InvoiceController) Document(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	doc, err := c.invoices.Document(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(doc) //nolint:errcheck
}

func (c *InvoiceController) List(w http.ResponseWriter, r *http.Request) {
	var (
		invoices []models.Invoice
		err      error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		invoices, err = c.invoices.ByStatus(r.Context(), status)
	} else {
		invoices, err = c.invoices.All(r.Context())
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoices)
}

// ByCustomer lists one customer's invoices for an admin.
func (c *InvoiceController) ByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerId")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	invoices, err := c.invoices.ByCustomer(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoices)
}

// Mine lists the authenticated customer's own invoices.
func (c *InvoiceController) Mine(w http.ResponseWriter, r *http.Request) {
	customerID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	invoices, err := c.invoices.ByCustomer(r.Context(), customerID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoices)
}

// Overdue lists sent invoices past their due date.
func (c *InvoiceController) Overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := c.invoices.Overdue(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, invoices)
}

// Summary reports invoiced, paid and outstanding revenue totals.
func (c *InvoiceController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.invoices.Summary(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, summary)
}
