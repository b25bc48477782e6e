package purchaseorder

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("purchase order not found")
	ErrInvalidTransition = errors.New("purchase order is not in a state that allows this step")
	ErrValidation        = errors.New("validation failed")
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// nextStatus describes the forward chain. Cancellation is handled
// separately: it is allowed from any state before delivery.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusDraft:     OrderStatusSent,
	OrderStatusSent:      OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusDelivered,
}

func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusDraft || s == OrderStatusSent || s == OrderStatusConfirmed
}

type OrderLine struct {
	ConsumableID   string  `bson:"consumable_id" json:"consumable_id"`
	ConsumableName string  `bson:"consumable_name" json:"consumable_name"`
	Unit           string  `bson:"unit" json:"unit"`
	Quantity       float64 `bson:"quantity" json:"quantity"`
	UnitPrice      float64 `bson:"unit_price" json:"unit_price"`
	LineTotal      float64 `bson:"line_total" json:"line_total"`
}

type PurchaseOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number       string             `bson:"number" json:"number"` // e.g. PO-3F2A91C4
	SupplierID   string             `bson:"supplier_id" json:"supplier_id"`
	SupplierName string             `bson:"supplier_name" json:"supplier_name"`
	Lines        []OrderLine        `bson:"lines" json:"lines"`
	Total        float64            `bson:"total" json:"total"`
	Status       OrderStatus        `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderDate    time.Time          `bson:"order_date" json:"order_date"`
	SentDate     *time.Time         `bson:"sent_date,omitempty" json:"sent_date,omitempty"`
	DeliveredOn  *time.Time         `bson:"delivered_on,omitempty" json:"delivered_on,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
