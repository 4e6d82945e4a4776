package model

import "time"

// トップページ等に出すバナー
type Banner struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Image     string    `gorm:"type:varchar(500);not null" json:"image"`
	Link      string    `gorm:"type:varchar(500)" json:"link"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
