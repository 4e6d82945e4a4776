package model

import "time"

// 注文明細。price/logi_price/spec_infoは注文時点のスナップショットで、
// 後から商品やスペックが編集されても変わらない
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	SpecID    int64 `gorm:"not null;index" json:"spec_id"`

	Quantity int64 `gorm:"not null" json:"quantity"`

	//スペック単価のスナップショット
	Price int64 `gorm:"not null" json:"price"`

	//商品送料のスナップショット
	LogiPrice int64 `gorm:"not null" json:"logi_price"`

	//スペック表示ラベルのスナップショット
	SpecInfo string `gorm:"type:varchar(255);not null" json:"spec_info"`

	//購入者の備考
	Remark string `gorm:"type:varchar(500)" json:"remark,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
