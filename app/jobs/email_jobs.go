package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/pkg/logger"
	"github.com/shashiranjanraj/emart/pkg/mail"
	"github.com/shashiranjanraj/emart/pkg/notification"
)

// sendPlain delivers a plain-text email unless mail is disabled by config.
func sendPlain(to, subject, body string) error {
	if !config.MailEnabled() {
		logger.Info("mail disabled, skipping", "to", to, "subject", subject)
		return nil
	}
	return mail.To(to).Subject(subject).Text(body).Send()
}

// WelcomeEmailJob greets a freshly registered account.
type WelcomeEmailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (j WelcomeEmailJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Welcome to EMart! Your account has been successfully created.\n\n"+
			"Role: %s\nEmail: %s\n\n"+
			"You can now log in to your account and start using our services.\n\n"+
			"Best regards,\nEMart Team",
		j.Name, j.Role, j.Email)
	return sendPlain(j.Email, "Welcome to EMart", body)
}

// ProductApprovedJob tells a supplier their product passed review.
type ProductApprovedJob struct {
	SupplierEmail string `json:"supplierEmail"`
	SupplierName  string `json:"supplierName"`
	ProductName   string `json:"productName"`
}

func (j ProductApprovedJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your product '%s' has been approved and is now available in our inventory.\n"+
			"You will be notified when the goods arrive from the warehouse to the shop.\n\n"+
			"Best regards,\nEMart Team",
		j.SupplierName, j.ProductName)
	return sendPlain(j.SupplierEmail, "Product Approval Notification", body)
}

// ProductRejectedJob tells a supplier their product was rejected and why.
type ProductRejectedJob struct {
	SupplierEmail string `json:"supplierEmail"`
	SupplierName  string `json:"supplierName"`
	ProductName   string `json:"productName"`
	Reason        string `json:"reason"`
}

func (j ProductRejectedJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your product '%s' has been rejected for the following reason:\n%s\n\n"+
			"Please review and resubmit if necessary.\n\n"+
			"Best regards,\nEMart Team",
		j.SupplierName, j.ProductName, j.Reason)
	return sendPlain(j.SupplierEmail, "Product Rejection Notification", body)
}

// OrderConfirmationJob confirms a placed order to the customer.
type OrderConfirmationJob struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	OrderNumber string  `json:"orderNumber"`
	Total       float64 `json:"total"`
}

func (j OrderConfirmationJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for your order! Your order has been confirmed.\n\n"+
			"Order Number: %s\nTotal Amount: $%.2f\n\n"+
			"We will notify you when your order is ready for pickup.\n\n"+
			"Best regards,\nEMart Team",
		j.Name, j.OrderNumber, j.Total)
	return sendPlain(j.Email, "Order Confirmation - "+j.OrderNumber, body)
}

// OrderCancelledJob confirms a cancellation to the customer.
type OrderCancelledJob struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	OrderNumber string `json:"orderNumber"`
}

func (j OrderCancelledJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your order %s has been cancelled and any reserved stock has been released.\n\n"+
			"Best regards,\nEMart Team",
		j.Name, j.OrderNumber)
	return sendPlain(j.Email, "Order Cancelled - "+j.OrderNumber, body)
}

// PaymentConfirmationJob confirms a successful charge to the customer.
type PaymentConfirmationJob struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	OrderNumber string  `json:"orderNumber"`
	Amount      float64 `json:"amount"`
}

func (j PaymentConfirmationJob) Handle() error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your payment has been processed successfully.\n\n"+
			"Order Number: %s\nAmount Paid: $%.2f\n\n"+
			"Thank you for your business!\n\n"+
			"Best regards,\nEMart Team",
		j.Name, j.OrderNumber, j.Amount)
	return sendPlain(j.Email, "Payment Confirmation - "+j.OrderNumber, body)
}

// InvoiceEmailJob delivers a sent invoice, attaching the rendered document.
type InvoiceEmailJob struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Amount        float64 `json:"amount"`
	Document      []byte  `json:"document,omitempty"`
}

func (j InvoiceEmailJob) Handle() error {
	if !config.MailEnabled() {
		logger.Info("mail disabled, skipping", "to", j.Email, "invoice", j.InvoiceNumber)
		return nil
	}

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"An invoice has been generated for your order.\n\n"+
			"Invoice Number: %s\nAmount: $%.2f\n\n"+
			"You can download the invoice from your account dashboard.\n\n"+
			"Best regards,\nEMart Team",
		j.Name, j.InvoiceNumber, j.Amount)

	msg := mail.To(j.Email).Subject("Invoice Generated - " + j.InvoiceNumber).Text(body)
	if len(j.Document) > 0 {
		msg.Attach(j.InvoiceNumber+".html", j.Document)
	}
	return msg.Send()
}

// LowStockAlertJob warns operations about products running out, by mail and,
// when a webhook is configured, Slack.
type LowStockAlertJob struct {
	AdminEmail string           `json:"adminEmail"`
	Products   []StockAlertItem `json:"products"`
}

// StockAlertItem is one product in a stock or expiry alert.
type StockAlertItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Expiry   string `json:"expiry,omitempty"`
}

func (j LowStockAlertJob) Handle() error {
	for _, p := range j.Products {
		body := fmt.Sprintf(
			"Dear Admin,\n\n"+
				"The following product is running low on stock:\n\n"+
				"Product: %s\nCurrent Stock: %d\n\n"+
				"Please reorder soon to avoid stockouts.\n\n"+
				"Best regards,\nEMart System",
			p.Name, p.Quantity)
		if err := sendPlain(j.AdminEmail, "Low Stock Alert", body); err != nil {
			return err
		}
	}

	notification.SendAsync(j.AdminEmail, &stockSlackAlert{
		title:    "Low stock",
		products: j.Products,
	})
	return nil
}

// ExpiryAlertJob warns operations about products near their best-before date.
type ExpiryAlertJob struct {
	AdminEmail string           `json:"adminEmail"`
	Products   []StockAlertItem `json:"products"`
}

func (j ExpiryAlertJob) Handle() error {
	for _, p := range j.Products {
		body := fmt.Sprintf(
			"Dear Admin,\n\n"+
				"The following product is approaching its expiry date:\n\n"+
				"Product: %s\nExpiry Date: %s\n\n"+
				"Please take appropriate action.\n\n"+
				"Best regards,\nEMart System",
			p.Name, p.Expiry)
		if err := sendPlain(j.AdminEmail, "Product Expiry Alert", body); err != nil {
			return err
		}
	}

	notification.SendAsync(j.AdminEmail, &stockSlackAlert{
		title:    "Expiring products",
		products: j.Products,
	})
	return nil
}

// stockSlackAlert mirrors stock alerts into Slack when a webhook is set up.
type stockSlackAlert struct {
	title    string
	products []StockAlertItem
}

func (n *stockSlackAlert) Via() []string {
	if config.Get("SLACK_WEBHOOK_URL", "") == "" {
		return nil
	}
	return []string{"slack"}
}

func (n *stockSlackAlert) ToSlack() notification.SlackData {
	attachments := make([]notification.SlackAttachment, 0, len(n.products))
	for _, p := range n.products {
		text := fmt.Sprintf("quantity %d", p.Quantity)
		if p.Expiry != "" {
			text = "expires " + p.Expiry
		}
		attachments = append(attachments, notification.SlackAttachment{
			Color: "warning",
			Title: p.Name,
			Text:  text,
		})
	}
	return notification.SlackData{Text: n.title, Attachments: attachments}
}
