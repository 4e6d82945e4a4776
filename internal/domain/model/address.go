package model

import "time"

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(30);not null" json:"phone"`

	//省・市・区はそれぞれ "code/name" 形式の複合文字列で保存する
	Province string `gorm:"type:varchar(100);not null" json:"province"`
	City     string `gorm:"type:varchar(100);not null" json:"city"`
	District string `gorm:"type:varchar(100);not null" json:"district"`

	//番地など
	Detail string `gorm:"type:varchar(255);not null" json:"detail"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
