package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Preload("Address").
		Where("id = ? AND is_deleted = ?", orderID, false).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("orders.is_deleted = ?", false)

	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.UserID != nil {
		q = q.Where("orders.user_id = ?", *f.UserID)
	}

	//「そのベンダーの商品を1件以上含む注文」に絞る
	if f.VendorID != nil {
		q = q.Where(
			"EXISTS (SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id WHERE oi.order_id = orders.id AND p.vendor_id = ?)",
			*f.VendorID,
		)
	}

	//注文ID・ユーザー名・メールの部分一致（大文字小文字を区別しない）
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where(
				"CAST(orders.id AS TEXT) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?",
				pattern, pattern, pattern,
			)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	//並び替え。カラム名はusecase側でホワイトリスト済み
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	q = q.Order(fmt.Sprintf("orders.%s %s", orderBy, dir))

	q = q.Preload("Items")
	if f.WithUser {
		q = q.Preload("User")
	}

	var items []model.Order
	offset := (f.Page - 1) * f.PageSize
	if err := q.Limit(f.PageSize).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	//Itemsも一緒にINSERTされる
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, meta repo.OrderStatusMeta) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if meta.TrackingNumber != "" {
		updates["tracking_number"] = meta.TrackingNumber
	}
	if meta.ShippingInfo != "" {
		updates["shipping_info"] = meta.ShippingInfo
	}
	if meta.RefundInfo != "" {
		updates["refund_info"] = meta.RefundInfo
	}
	if meta.PaidAt {
		updates["paid_at"] = time.Now()
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND is_deleted = ?", orderID, false).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除。既に削除済みでもエラーにしない（冪等）
func (r *OrderGormRepository) SoftDelete(ctx context.Context, orderIDs []int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ?", orderIDs).
		Update("is_deleted", true)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *OrderGormRepository) CountByStatus(ctx context.Context) (repo.OrderStatusCounts, error) {
	var counts repo.OrderStatusCounts

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Order{}).Where("is_deleted = ?", false)
	}

	if err := base().Count(&counts.Total).Error; err != nil {
		return repo.OrderStatusCounts{}, err
	}

	byStatus := []struct {
		status model.OrderStatus
		dst    *int64
	}{
		{model.OrderStatusPaid, &counts.Paid},
		{model.OrderStatusChecked, &counts.Checked},
		{model.OrderStatusDelivered, &counts.Delivered},
		{model.OrderStatusCompleted, &counts.Completed},
		{model.OrderStatusCancelled, &counts.Cancelled},
	}
	for _, s := range byStatus {
		if err := base().Where("status = ?", s.status).Count(s.dst).Error; err != nil {
			return repo.OrderStatusCounts{}, err
		}
	}

	return counts, nil
}
