package model

import "time"

// 動画講座
type Course struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Cover     string    `gorm:"type:varchar(500)" json:"cover"`
	VideoURL  string    `gorm:"type:varchar(500);not null" json:"video_url"`
	Price     int64     `gorm:"not null;default:0" json:"price"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
