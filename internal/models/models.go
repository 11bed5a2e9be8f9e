package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. A user's cart is their order in StatusNew; confirmation
// moves it to StatusProcessing. Completed/failed are set from the order
// management screens.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsStaff      bool   `gorm:"not null;default:false"   json:"is_staff"`
	IsEmployee   bool   `gorm:"not null;default:false"   json:"is_employee"`

	Orders []Order `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type ProductCategory struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name          string          `gorm:"not null"                   json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	CategoryID    uint            `gorm:"index;not null"             json:"category_id"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

type Order struct {
	// The partial unique index backs the one-active-cart-per-user rule;
	// get-or-create alone would leave a race window.
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_orders_active_cart,where:status = 'new'" json:"user_id"`
	Status    string    `gorm:"not null;default:new;index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime"             json:"created_at"`

	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Total is the order total at current product prices, computed on demand
// and never stored. Items and their products must be preloaded.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint `gorm:"not null;uniqueIndex:idx_order_items_order_product,priority:1" json:"order_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_order_items_order_product,priority:2" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
