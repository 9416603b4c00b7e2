package model

import "time"

// Price is the resolved unit price at checkout.
type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	ProductID       string          `gorm:"type:varchar(64);not null;index" json:"product_id"`
	ProductName     string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage    string          `gorm:"type:text" json:"product_image"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           int64           `gorm:"not null" json:"price"`
	SelectedOptions SelectedOptions `gorm:"serializer:json;type:jsonb" json:"selected_options,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
