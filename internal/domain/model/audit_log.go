package model

import "time"

// 操作の種類
type AuditAction string

const (
	//注文を作成した操作
	AuditActionCreateOrder AuditAction = "CREATE_ORDER"

	//注文ステータスを更新した操作
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"

	//受取確認で注文を完了にした操作
	AuditActionCompleteOrder AuditAction = "ORDER_COMPLETE"

	//注文をキャンセルした操作
	AuditActionCancelOrder AuditAction = "CANCEL_ORDER"

	//在庫を更新した操作
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"

	//抽選でプライズを引いた操作
	AuditActionDrawPrize AuditAction = "DRAW_PRIZE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceUser     AuditResourceType = "user"
	AuditResourceActivity AuditResourceType = "activity"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
