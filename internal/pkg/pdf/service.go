// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/marketplace-core/internal/config"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/user"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Service renders order invoices
type Service struct {
	company CompanyInfo
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.App.CompanyName,
			Address: cfg.App.CompanyAddress,
			Email:   cfg.App.CompanyEmail,
		},
		now: time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	Order         *order.Order `json:"order"`
	BillTo        BillTo       `json:"bill_to"`
	Company       CompanyInfo  `json:"company"`
}

// BillTo is the customer block printed on the invoice
type BillTo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// InvoiceData builds the template input for o
func (s *Service) InvoiceData(o *order.Order, customer *user.User) InvoiceData {
	data := InvoiceData{
		InvoiceNumber: "INV-" + o.OrderNumber,
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         o,
		Company:       s.company,
		BillTo:        BillTo{Address: o.ShippingAddress},
	}
	if customer != nil {
		data.BillTo.Name = customer.FullName()
		data.BillTo.Email = customer.Email
		if customer.BillingAddress != "" {
			data.BillTo.Address = customer.BillingAddress
		}
	}
	return data
}

// RenderHTML executes the invoice template
func (s *Service) RenderHTML(data InvoiceData) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateInvoice renders the invoice for o as a PDF document
func (s *Service) GenerateInvoice(o *order.Order, customer *user.User) ([]byte, error) {
	html, err := s.RenderHTML(s.InvoiceData(o, customer))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-info { text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; width: 90px; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            <p>{{.Company.Email}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
            <p><strong>Status:</strong> {{.Order.Status}}</p>
        </div>
    </div>

    <div>
        <div class="section-title">Bill To:</div>
        {{if .BillTo.Name}}<p><strong>{{.BillTo.Name}}</strong></p>{{end}}
        {{if .BillTo.Address}}<p>{{.BillTo.Address}}</p>{{end}}
        {{if .BillTo.Email}}<p>Email: {{.BillTo.Email}}</p>{{end}}
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.ProductName}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">${{.UnitPrice.StringFixed 2}}</td>
                <td class="num">${{.TotalPrice.StringFixed 2}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td colspan="4" class="num">Total:</td>
                <td class="num">${{.Order.TotalAmount.StringFixed 2}}</td>
            </tr>
        </tbody>
    </table>

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.Email}}</p>
    </div>
</body>
</html>
`
