package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/metrics"
	"github.com/shashiranjanraj/emart/pkg/response"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// Process charges an order through the configured gateway. The response
// carries the final record whether the charge was approved or declined.
func (c *PaymentController) Process(w http.ResponseWriter, r *http.Request) {
	var in services.ProcessInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	payment, err := c.payments.Process(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.PaymentsProcessed.WithLabelValues(strings.ToLower(string(payment.Status))).Inc()
	response.Created(w, payment)
}

// Refund reverses up to the full amount of a completed payment.
func (c *PaymentController) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
		Reason string  `json:"reason"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	refund, err := c.payments.Refund(r.Context(), id, in.Amount, in.Reason)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, refund)
}

func (c *PaymentController) SetStatus(w http.ResponseWriter, r *http.Request) {
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

	payment, err := c.payments.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (c *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	payment, err := c.payments.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (c *PaymentController) GetByTransactionID(w http.ResponseWriter, r *http.Request) {
	payment, err := c.payments.GetByTransactionID(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payment)
}

func (c *PaymentController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		payments []models.Payment
		err      error
	)
	switch {
	case q.Get("start") != "" || q.Get("end") != "":
		var start, end time.Time
		start, end, err = dateRange(r)
		if err == nil {
			payments, err = c.payments.ByDateRange(r.Context(), start, end)
		}
	case q.Get("status") != "":
		payments, err = c.payments.ByStatus(r.Context(), q.Get("status"))
	case q.Get("method") != "":
		payments, err = c.payments.ByMethod(r.Context(), q.Get("method"))
	default:
		payments, err = c.payments.All(r.Context())
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payments)
}

// ByOrder lists every payment record of one order, refunds included.
func (c *PaymentController) ByOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	payments, err := c.payments.ByOrder(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payments)
}

// ByCustomer lists one customer's payment history for an admin.
func (c *PaymentController) ByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerId")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	payments, err := c.payments.ByCustomer(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payments)
}

// Mine lists the authenticated customer's own payment history.
func (c *PaymentController) Mine(w http.ResponseWriter, r *http.Request) {
	customerID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	payments, err := c.payments.ByCustomer(r.Context(), customerID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, payments)
}

// Revenue reports completed payment volume and refund volume.
func (c *PaymentController) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, err := dateRange(r)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		total, err := c.payments.TotalByDateRange(r.Context(), start, end)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		response.Success(w, map[string]float64{"payments": total})
		return
	}

	payments, err := c.payments.TotalPayments(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	refunds, err := c.payments.TotalRefunds(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]float64{
		"payments": payments,
		"refunds":  refunds,
		"net":      payments - refunds,
	})
}

// MethodsSummary reports completed volume grouped by payment method.
func (c *PaymentController) MethodsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.payments.MethodsSummary(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, summary)
}
