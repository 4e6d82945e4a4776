package repository

import (
	"context"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, specID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSpec{}).
		Where("id = ?", specID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす。
// 読み取り→比較→更新に分けると同時注文で売り越すので、条件付きUPDATE1文で行う
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, specID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSpec{}).
		Where("id = ? AND stock >= ?", specID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, specID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSpec{}).
		Where("id = ?", specID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
