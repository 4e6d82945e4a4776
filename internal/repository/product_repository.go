package repository

import (
	"context"
	"errors"

	"mall/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page         int
	Limit        int
	Q            string
	MinPrice     *int64
	MaxPrice     *int64
	CollectionID *int64
	VendorID     *int64
	Sort         string

	//falseなら非公開商品も含める（管理画面用）
	ActiveOnly bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	//Specsをpreloadして1件取得
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	//スペック一式を入れ替える（管理画面の編集）
	ReplaceSpecs(ctx context.Context, productID int64, specs []model.ProductSpec) error

	//販売数カウンタの増減
	IncreaseSales(ctx context.Context, productID int64, qty int64) error
	DecreaseSales(ctx context.Context, productID int64, qty int64) error
}

// スペック在庫の永続化と履歴保存をまとめた約束。
type InventoryRepository interface {
	//在庫の現在値を設定
	SetStock(ctx context.Context, specID int64, newStock int64) error

	//在庫が足りるときだけ減算。足りないならfalse
	DecreaseStockIfEnough(ctx context.Context, specID int64, qty int64) (bool, error)

	//在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, specID int64, qty int64) error

	//調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
