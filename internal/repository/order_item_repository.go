package repository

import (
	"context"

	"mall/internal/domain/model"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	//指定ベンダーの商品の明細だけを返す（マルチベンダー注文の部分ビュー）
	ListByOrderIDForVendor(ctx context.Context, orderID int64, vendorID int64) ([]model.OrderItem, error)

	//注文にそのベンダーの明細が1件以上あるか
	HasVendorItem(ctx context.Context, orderID int64, vendorID int64) (bool, error)
}
