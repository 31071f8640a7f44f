// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// AllStatuses lists every known status
var AllStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseStatus accepts a status name in any case
func ParseStatus(s string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if st == candidate {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is the record of a completed checkout
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status          OrderStatus     `gorm:"not null;size:20;index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is an immutable snapshot of a purchased line
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	SKU         string          `gorm:"not null;size:100" json:"sku"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   OrderStatus `gorm:"not null;size:20" json:"to_status"`
	Comment    string      `gorm:"type:text" json:"comment"`
	ChangedBy  uuid.UUID   `gorm:"type:uuid;index" json:"changed_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(o.ID, time.Now().UTC())
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// GenerateOrderNumber formats ORD-YYYYMMDD-XXXXXXXX from the order id
func GenerateOrderNumber(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8]))
}

// AddItem appends a line and keeps TotalAmount equal to the sum of line totals
func (o *Order) AddItem(item OrderItem) {
	item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.TotalPrice)
}

// ProductIDs returns the distinct products in the order
func (o *Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// AddStatusHistory appends a status change and returns the new entry.
// Entries on an unsaved order are written together with it.
func (o *Order) AddStatusHistory(from, to OrderStatus, comment string, changedBy uuid.UUID) *OrderStatusHistory {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		Comment:    comment,
		ChangedBy:  changedBy,
		CreatedAt:  time.Now().UTC(),
	})
	return &o.StatusHistory[len(o.StatusHistory)-1]
}
