package consumable

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("consumable not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateCode     = errors.New("consumable code already exists")
)

// Consumable is a stock-keeping unit staff may request through a
// requisition. StockLevel only changes through AdjustStock.
type Consumable struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code         string             `bson:"code" json:"code"` // e.g. CON001
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category" json:"category"`
	Unit         string             `bson:"unit" json:"unit"` // e.g. Ream, Liter, Piece
	StockLevel   float64            `bson:"stock_level" json:"stock_level"`
	ReorderLevel float64            `bson:"reorder_level" json:"reorder_level"`
	UnitPrice    float64            `bson:"unit_price" json:"unit_price"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
