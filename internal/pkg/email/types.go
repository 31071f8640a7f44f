// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	SiteURL   string `json:"site_url"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderNumber     string      `json:"order_number"`
	OrderDate       string      `json:"order_date"`
	OrderTotal      string      `json:"order_total"`
	OrderURL        string      `json:"order_url"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Comment       string `json:"comment,omitempty"`
	OrderURL      string `json:"order_url"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
