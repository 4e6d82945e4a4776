package model

import "time"

// 抽選キャンペーン
type Activity struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string    `gorm:"type:varchar(255);not null" json:"title"`
	StartAt  time.Time `gorm:"not null" json:"start_at"`
	EndAt    time.Time `gorm:"not null" json:"end_at"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	Prizes []Prize `gorm:"foreignKey:ActivityID" json:"prizes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 当たり景品。Weightが大きいほど出やすい
type Prize struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID int64  `gorm:"not null;index" json:"activity_id"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Image      string `gorm:"type:varchar(500)" json:"image"`
	Weight     int64  `gorm:"not null;default:1" json:"weight"`

	//景品在庫。0未満にはならない
	Stock int64 `gorm:"not null;default:0" json:"stock"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 抽選券。secretは1回しか使えない
type LotteryTicket struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID int64  `gorm:"not null;index" json:"activity_id"`
	Secret     string `gorm:"type:varchar(64);not null;uniqueIndex" json:"secret"`
	Used       bool   `gorm:"not null;default:false" json:"used"`

	//引いた人と結果（未使用ならnil）
	UserID  *int64     `gorm:"index" json:"user_id,omitempty"`
	PrizeID *int64     `json:"prize_id,omitempty"`
	DrawnAt *time.Time `json:"drawn_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
