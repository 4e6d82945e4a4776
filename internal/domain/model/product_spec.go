package model

import "time"

// 商品の購入可能なバリエーション（サイズ・色など）
type ProductSpec struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//表示ラベル（例: "红色/L"）
	Value string `gorm:"type:varchar(255);not null" json:"value"`

	//販売価格
	Price int64 `gorm:"not null" json:"price"`

	//仕入れ価格
	PurchasePrice int64 `gorm:"not null;default:0" json:"purchase_price"`

	//在庫。0未満にはならない
	Stock int64 `gorm:"not null;default:0" json:"stock"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
