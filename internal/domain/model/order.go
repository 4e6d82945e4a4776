package model

import "time"

type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusChecked   OrderStatus = "CHECKED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// 注文は明細1件につき1レコード作られる（カート単位の集約ではない）
type Order struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	AddressID int64 `gorm:"not null" json:"address_id"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//明細の price*quantity + logi_price（作成時に確定して保存）
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	//発送後に付くメタ情報
	TrackingNumber string `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	ShippingInfo   string `gorm:"type:text" json:"shipping_info,omitempty"`
	RefundInfo     string `gorm:"type:text" json:"refund_info,omitempty"`

	//論理削除。一覧・統計からは除外するが行は残す
	IsDeleted bool `gorm:"not null;default:false;index" json:"-"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	User    *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Address *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"`
}
