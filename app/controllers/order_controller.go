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

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create places an order for the authenticated customer. Stock is reserved
// atomically per line item and the whole order fails if any item is short.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	customerID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	order, err := c.orders.Create(r.Context(), customerID, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.OrdersPlaced.Inc()
	response.Created(w, order)
}

// Cancel releases the reserved stock of a still-pending order.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	customerID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	order, err := c.orders.Cancel(r.Context(), id, customerID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	metrics.OrdersCancelled.Inc()
	response.Success(w, order)
}

func (c *OrderController) SetStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := c.orders.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := c.orders.SetPaymentStatus(r.Context(), id, in.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	order, err := c.orders.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) GetByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := c.orders.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, order)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, err := dateRange(r)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		orders, err := c.orders.ByDateRange(r.Context(), start, end)
		c.respondList(w, r, orders, err)
		return
	}
	if status := q.Get("status"); status != "" {
		orders, err := c.orders.ByStatus(r.Context(), status)
		c.respondList(w, r, orders, err)
		return
	}
	orders, err := c.orders.All(r.Context())
	c.respondList(w, r, orders, err)
}

// Mine lists the authenticated customer's own orders, optionally windowed.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	customerID, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, err := dateRange(r)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		orders, err := c.orders.ByCustomerAndDateRange(r.Context(), customerID, start, end)
		c.respondList(w, r, orders, err)
		return
	}
	orders, err := c.orders.ByCustomer(r.Context(), customerID)
	c.respondList(w, r, orders, err)
}

// ByCustomer lists one customer's orders for an admin.
func (c *OrderController) ByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerId")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	orders, err := c.orders.ByCustomer(r.Context(), id)
	c.respondList(w, r, orders, err)
}

func (c *OrderController) Pending(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.Pending(r.Context())
	c.respondList(w, r, orders, err)
}

// PendingPayments lists orders still awaiting a successful charge.
func (c *OrderController) PendingPayments(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.PendingPayments(r.Context())
	c.respondList(w, r, orders, err)
}

// Revenue reports the summed totals of paid orders, optionally windowed.
func (c *OrderController) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, err := dateRange(r)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		total, err := c.orders.RevenueByDateRange(r.Context(), start, end)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		response.Success(w, map[string]float64{"revenue": total})
		return
	}
	total, err := c.orders.TotalRevenue(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]float64{"revenue": total})
}

func (c *OrderController) respondList(w http.ResponseWriter, r *http.Request, orders []models.Order, err error) {
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, orders)
}
