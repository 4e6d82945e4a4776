package repository

import (
	"context"
	"errors"
	"strings"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if q.Q != "" {
		pattern := "%" + strings.ToLower(q.Q) + "%"
		tx = tx.Where("LOWER(title) LIKE ?", pattern)
	}
	if q.CollectionID != nil {
		tx = tx.Where("collection_id = ?", *q.CollectionID)
	}
	if q.VendorID != nil {
		tx = tx.Where("vendor_id = ?", *q.VendorID)
	}

	//価格の範囲はスペックの最低価格で絞る
	if q.MinPrice != nil {
		tx = tx.Where("EXISTS (SELECT 1 FROM product_specs ps WHERE ps.product_id = products.id AND ps.price >= ?)", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("EXISTS (SELECT 1 FROM product_specs ps WHERE ps.product_id = products.id AND ps.price <= ?)", *q.MaxPrice)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case "sales":
		tx = tx.Order("sales DESC")
	case "new":
		tx = tx.Order("id DESC")
	default:
		tx = tx.Order("id DESC")
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := tx.Preload("Specs").Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Specs").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	//Specsも一緒にINSERTされる
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", p.ID).
		Select("title", "description", "images", "logi_price", "is_active", "collection_id").
		Updates(p)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// スペック一式の入れ替え。
// 既存注文のスナップショットはorder_items側に保存済みなので消してよい
func (r *ProductGormRepository) ReplaceSpecs(ctx context.Context, productID int64, specs []model.ProductSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductSpec{}).Error; err != nil {
			return err
		}
		for i := range specs {
			specs[i].ProductID = productID
		}
		if len(specs) == 0 {
			return nil
		}
		return tx.Create(&specs).Error
	})
}

func (r *ProductGormRepository) IncreaseSales(ctx context.Context, productID int64, qty int64) error {
	return r.addSales(ctx, productID, qty)
}

func (r *ProductGormRepository) DecreaseSales(ctx context.Context, productID int64, qty int64) error {
	return r.addSales(ctx, productID, -qty)
}

func (r *ProductGormRepository) addSales(ctx context.Context, productID int64, delta int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("sales", gorm.Expr("sales + ?", delta))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
