package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	//画像URLのJSON配列文字列
	Images string `gorm:"type:text" json:"images"`

	//商品単位の送料
	LogiPrice int64 `gorm:"not null;default:0" json:"logi_price"`

	//販売数カウンタ（注文作成で+、キャンセルで-）
	Sales int64 `gorm:"not null;default:0" json:"sales"`

	IsActive bool `gorm:"not null;default:false" json:"is_active"`

	//出品者（VENDORロールのユーザー）
	VendorID int64 `gorm:"not null;index" json:"vendor_id"`

	//カテゴリ
	CollectionID *int64 `gorm:"index" json:"collection_id,omitempty"`

	Specs []ProductSpec `gorm:"foreignKey:ProductID" json:"specs,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
