// Package routes wires the HTTP surface: which handler serves each path and
// which role may reach it.
package routes

import (
	"github.com/shashiranjanraj/emart/app/controllers"
	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/middleware"
	"github.com/shashiranjanraj/emart/pkg/rbac"
	"github.com/shashiranjanraj/emart/pkg/router"
)

// Services bundles the service layer handed to RegisterAPI.
type Services struct {
	Users    *services.UserService
	Products *services.ProductService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Invoices *services.InvoiceService
	Barcodes *services.BarcodeService
}

// RegisterAPI mounts every route under /api. Three access tiers: public,
// authenticated, and role-gated per the closed ADMIN/SUPPLIER/CUSTOMER set.
func RegisterAPI(r *router.Router, s Services) {
	authCtl := controllers.NewAuthController(s.Users)
	userCtl := controllers.NewUserController(s.Users)
	productCtl := controllers.NewProductController(s.Products)
	orderCtl := controllers.NewOrderController(s.Orders)
	paymentCtl := controllers.NewPaymentController(s.Payments)
	invoiceCtl := controllers.NewInvoiceController(s.Invoices)
	barcodeCtl := controllers.NewBarcodeController(s.Barcodes)

	api := r.Group("/api")

	// Public: registration, login and the read-only storefront catalog.
	api.Post("/auth/register", "auth.register", authCtl.Register)
	api.Post("/auth/login", "auth.login", authCtl.Login)
	api.Post("/auth/validate-token", "auth.validate", authCtl.ValidateToken)

	api.Get("/products/available", "products.available", productCtl.Available)
	api.Get("/products/approved", "products.approved", productCtl.Approved)
	api.Get("/products/search", "products.search", productCtl.Search)
	api.Get("/products/price-range", "products.price_range", productCtl.ByPriceRange)
	api.Get("/products/barcode/{barcode}", "products.by_barcode", productCtl.GetByBarcode)
	api.Get("/products/{id}", "products.show", productCtl.Get)

	api.Get("/barcodes/format", "barcodes.format", barcodeCtl.Format)
	api.Get("/barcodes/{code}/validate", "barcodes.validate", barcodeCtl.Validate)
	api.Get("/barcodes/{code}/image", "barcodes.image", barcodeCtl.Image)

	authed := api.Group("", middleware.Auth)
	authed.Post("/auth/logout", "auth.logout", authCtl.Logout)
	authed.Get("/auth/me", "auth.me", authCtl.Me)
	authed.Post("/auth/change-password", "auth.change_password", authCtl.ChangePassword)

	admin := authed.Group("", rbac.HasRole(string(models.RoleAdmin)))
	supplier := authed.Group("", rbac.HasRole(string(models.RoleSupplier)))
	customer := authed.Group("", rbac.HasRole(string(models.RoleCustomer)))

	// Admin: account management.
	admin.Get("/users", "users.index", userCtl.List)
	admin.Get("/users/stats", "users.stats", userCtl.Stats)
	admin.Get("/users/{id}", "users.show", userCtl.Get)
	admin.Put("/users/{id}", "users.update", userCtl.Update)
	admin.Delete("/users/{id}", "users.disable", userCtl.Disable)
	admin.Post("/users/{id}/enable", "users.enable", userCtl.Enable)

	// Admin: catalog oversight.
	admin.Get("/products", "products.index", productCtl.List)
	admin.Get("/products/admin/pending", "products.pending", productCtl.Pending)
	admin.Get("/products/admin/expiring", "products.expiring", productCtl.Expiring)
	admin.Get("/products/admin/expired", "products.expired", productCtl.Expired)
	admin.Get("/products/admin/low-stock", "products.low_stock", productCtl.LowStock)
	admin.Post("/products/{id}/approve", "products.approve", productCtl.Approve)
	admin.Post("/products/{id}/reject", "products.reject", productCtl.Reject)
	admin.Patch("/products/{id}/stock", "products.stock", productCtl.UpdateStock)

	// Supplier: own catalog entries.
	supplier.Post("/products", "products.create", productCtl.Create)
	supplier.Put("/products/{id}", "products.update", productCtl.Update)
	supplier.Delete("/products/{id}", "products.delete", productCtl.Delete)
	supplier.Get("/products/supplier/mine", "products.mine", productCtl.Mine)
	supplier.Post("/barcodes/generate", "barcodes.generate", barcodeCtl.Generate)
	supplier.Post("/barcodes/generate-bulk", "barcodes.generate_bulk", barcodeCtl.GenerateBulk)

	// Customer: ordering.
	customer.Post("/orders", "orders.create", orderCtl.Create)
	customer.Get("/orders/my", "orders.mine", orderCtl.Mine)
	customer.Post("/orders/{id}/cancel", "orders.cancel", orderCtl.Cancel)

	// Admin: order oversight.
	admin.Get("/orders", "orders.index", orderCtl.List)
	admin.Get("/orders/pending", "orders.pending", orderCtl.Pending)
	admin.Get("/orders/pending-payments", "orders.pending_payments", orderCtl.PendingPayments)
	admin.Get("/orders/revenue", "orders.revenue", orderCtl.Revenue)
	admin.Get("/orders/number/{number}", "orders.by_number", orderCtl.GetByNumber)
	admin.Get("/orders/customer/{customerId}", "orders.by_customer", orderCtl.ByCustomer)
	admin.Get("/orders/{id}", "orders.show", orderCtl.Get)
	admin.Patch("/orders/{id}/status", "orders.status", orderCtl.SetStatus)
	admin.Patch("/orders/{id}/payment-status", "orders.payment_status", orderCtl.SetPaymentStatus)

	// Customer: payments.
	customer.Post("/payments", "payments.process", paymentCtl.Process)
	customer.Get("/payments/my", "payments.mine", paymentCtl.Mine)

	// Admin: payment oversight and refunds.
	admin.Get("/payments", "payments.index", paymentCtl.List)
	admin.Get("/payments/revenue", "payments.revenue", paymentCtl.Revenue)
	admin.Get("/payments/methods-summary", "payments.methods_summary", paymentCtl.MethodsSummary)
	admin.Get("/payments/transaction/{transactionId}", "payments.by_transaction", paymentCtl.GetByTransactionID)
	admin.Get("/payments/order/{orderId}", "payments.by_order", paymentCtl.ByOrder)
	admin.Get("/payments/customer/{customerId}", "payments.by_customer", paymentCtl.ByCustomer)
	admin.Get("/payments/{id}", "payments.show", paymentCtl.Get)
	admin.Post("/payments/{id}/refund", "payments.refund", paymentCtl.Refund)
	admin.Patch("/payments/{id}/status", "payments.status", paymentCtl.SetStatus)

	// Customer: own invoices.
	customer.Get("/invoices/my", "invoices.mine", invoiceCtl.Mine)

	// Admin: invoicing.
	admin.Get("/invoices", "invoices.index", invoiceCtl.List)
	admin.Get("/invoices/overdue", "invoices.overdue", invoiceCtl.Overdue)
	admin.Get("/invoices/summary", "invoices.summary", invoiceCtl.Summary)
	admin.Get("/invoices/number/{number}", "invoices.by_number", invoiceCtl.GetByNumber)
	admin.Get("/invoices/order/{orderId}", "invoices.by_order", invoiceCtl.ByOrder)
	admin.Get("/invoices/customer/{customerId}", "invoices.by_customer", invoiceCtl.ByCustomer)
	admin.Get("/invoices/{id}", "invoices.show", invoiceCtl.Get)
	admin.Get("/invoices/{id}/document", "invoices.document", invoiceCtl.Document)
	admin.Post("/invoices/{id}/sign", "invoices.sign", invoiceCtl.Sign)
	admin.Post("/invoices/{id}/send", "invoices.send", invoiceCtl.Send)
	admin.Patch("/invoices/{id}/status", "invoices.status", invoiceCtl.SetStatus)
}
