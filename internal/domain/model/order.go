package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// UserID is empty for guest checkouts; GuestSession then holds the cart
// session that placed the order. Idempotency keys are unique per user for
// signed-in orders and per cart session for guest orders.
type Order struct {
	ID              string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID          string      `gorm:"type:varchar(64);index;uniqueIndex:idx_orders_user_key,priority:1" json:"user_id,omitempty"`
	GuestSession    string      `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_orders_user_key,priority:2" json:"-"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     int64       `gorm:"not null" json:"total_amount"`
	RecipientName   string      `gorm:"type:varchar(255);not null" json:"recipient_name"`
	RecipientEmail  string      `gorm:"type:varchar(255);not null" json:"recipient_email"`
	RecipientPhone  string      `gorm:"type:varchar(50);not null" json:"recipient_phone"`
	DeliveryAddress string      `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryCity    string      `gorm:"type:varchar(100)" json:"delivery_city"`
	DeliveryState   string      `gorm:"type:varchar(100)" json:"delivery_state"`
	PaymentMethod   string      `gorm:"type:varchar(50)" json:"payment_method"`
	DeliveryMethod  string      `gorm:"type:varchar(50)" json:"delivery_method"`
	Notes           string      `gorm:"type:text" json:"notes"`
	IdempotencyKey  string      `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_user_key,priority:3" json:"-"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
