package repository

import (
	"context"

	"mall/internal/domain/model"
)

// 注文一覧の絞り込み条件。
// Searchは注文ID・ユーザー名・メールの部分一致（大文字小文字を区別しない）
type OrderListFilter struct {
	Page     int
	PageSize int
	Status   string
	UserID   *int64

	//指定時は「そのベンダーの商品を1件以上含む注文」に絞る
	VendorID *int64

	Search string

	//並び替え（カラム名はusecase側でホワイトリスト済み）
	OrderBy string
	Desc    bool

	//ユーザー概要をpreloadするか（管理画面用）
	WithUser bool
}

// ステータス別の集計（論理削除は除外）
type OrderStatusCounts struct {
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Checked   int64 `json:"checked"`
	Delivered int64 `json:"delivered"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// 注文ステータス更新時に添付するメタ情報
type OrderStatusMeta struct {
	TrackingNumber string
	ShippingInfo   string
	RefundInfo     string
	PaidAt         bool //trueならpaid_atを現在時刻で打刻
}

type OrderRepository interface {
	//Items/Address/Userをpreloadして1件取得（論理削除済みは対象外）
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//絞り込み一覧
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	//注文＋明細を同時に作成してIDを返す
	Create(ctx context.Context, order model.Order) (int64, error)

	//ステータスとメタ情報を更新
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, meta OrderStatusMeta) error

	//論理削除（冪等）。影響行数を返す
	SoftDelete(ctx context.Context, orderIDs []int64) (int64, error)

	//ステータス別の件数
	CountByStatus(ctx context.Context) (OrderStatusCounts, error)
}
