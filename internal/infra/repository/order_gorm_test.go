package repository

import (
	"context"
	"testing"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, name string, email string) model.User {
	t.Helper()

	u := model.User{Name: name, Email: email, PasswordHash: "x", Role: model.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedOrder(t *testing.T, db *gorm.DB, userID int64, status model.OrderStatus, productID int64, specID int64) model.Order {
	t.Helper()

	o := model.Order{
		UserID:     userID,
		AddressID:  1,
		Status:     status,
		TotalPrice: 1000,
		Items: []model.OrderItem{
			{ProductID: productID, SpecID: specID, Quantity: 1, Price: 1000, SpecInfo: "white/L"},
		},
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func TestOrderGorm_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")
	spec := seedSpec(t, db, 10)

	id, err := r.Create(ctx, model.Order{
		UserID:     user.ID,
		AddressID:  1,
		Status:     model.OrderStatusPaid,
		TotalPrice: 2300,
		Items: []model.OrderItem{
			{ProductID: spec.ProductID, SpecID: spec.ID, Quantity: 2, Price: 1000, LogiPrice: 300, SpecInfo: "white/L"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	o, err := r.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, o.Status)
	assert.Equal(t, int64(2300), o.TotalPrice)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "white/L", o.Items[0].SpecInfo)
	assert.Equal(t, int64(2), o.Items[0].Quantity)
}

// 商品価格を後から変えても明細のスナップショットは変わらない
func TestOrderGorm_ItemSnapshotSurvivesPriceChange(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")
	spec := seedSpec(t, db, 10)

	id, err := r.Create(ctx, model.Order{
		UserID: user.ID, AddressID: 1, Status: model.OrderStatusPaid, TotalPrice: 1000,
		Items: []model.OrderItem{
			{ProductID: spec.ProductID, SpecID: spec.ID, Quantity: 1, Price: 1000, SpecInfo: "white/L"},
		},
	})
	require.NoError(t, err)

	//スペックの価格とラベルを変更
	require.NoError(t, db.Model(&model.ProductSpec{}).Where("id = ?", spec.ID).
		Updates(map[string]interface{}{"price": 9999, "value": "black/S"}).Error)

	o, err := r.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), o.Items[0].Price)
	assert.Equal(t, "white/L", o.Items[0].SpecInfo)
}

func TestOrderGorm_SoftDeleteIdempotent(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")
	spec := seedSpec(t, db, 10)
	o := seedOrder(t, db, user.ID, model.OrderStatusPaid, spec.ProductID, spec.ID)

	n, err := r.SoftDelete(ctx, []int64{o.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	//2回目もエラーにならない
	_, err = r.SoftDelete(ctx, []int64{o.ID})
	assert.NoError(t, err)

	//削除後は取得できない
	_, err = r.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	//行自体は残っている
	var count int64
	require.NoError(t, db.Model(&model.Order{}).Where("id = ?", o.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// 論理削除済みは一覧にも統計にも出ない
func TestOrderGorm_DeletedExcludedFromListAndStats(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")
	spec := seedSpec(t, db, 10)

	kept := seedOrder(t, db, user.ID, model.OrderStatusPaid, spec.ProductID, spec.ID)
	deleted := seedOrder(t, db, user.ID, model.OrderStatusPaid, spec.ProductID, spec.ID)

	_, err := r.SoftDelete(ctx, []int64{deleted.ID})
	require.NoError(t, err)

	items, total, err := r.List(ctx, repo.OrderListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ID)

	counts, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
	assert.Equal(t, int64(1), counts.Paid)
}

func TestOrderGorm_ListFilters(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	taro := seedUser(t, db, "taro", "taro@test.com")
	hana := seedUser(t, db, "hana", "hana@test.com")
	spec := seedSpec(t, db, 10)

	seedOrder(t, db, taro.ID, model.OrderStatusPaid, spec.ProductID, spec.ID)
	seedOrder(t, db, taro.ID, model.OrderStatusChecked, spec.ProductID, spec.ID)
	seedOrder(t, db, hana.ID, model.OrderStatusPaid, spec.ProductID, spec.ID)

	//statusで絞る
	_, total, err := r.List(ctx, repo.OrderListFilter{Page: 1, PageSize: 20, Status: "PAID"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	//user_idで絞る
	_, total, err = r.List(ctx, repo.OrderListFilter{Page: 1, PageSize: 20, UserID: &taro.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	//ユーザー名の部分一致（大文字小文字を区別しない）
	items, total, err := r.List(ctx, repo.OrderListFilter{Page: 1, PageSize: 20, Search: "HANA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, hana.ID, items[0].UserID)
}

// ベンダー絞り込み：自分の商品を含む注文だけが見える
func TestOrderGorm_ListForVendor(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	itemRepo := NewOrderItemGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")

	//vendor 1 と vendor 2 の商品
	p1 := model.Product{Title: "shirt", IsActive: true, VendorID: 1}
	require.NoError(t, db.Create(&p1).Error)
	s1 := model.ProductSpec{ProductID: p1.ID, Value: "white/L", Price: 1000, Stock: 5}
	require.NoError(t, db.Create(&s1).Error)

	p2 := model.Product{Title: "mug", IsActive: true, VendorID: 2}
	require.NoError(t, db.Create(&p2).Error)
	s2 := model.ProductSpec{ProductID: p2.ID, Value: "red", Price: 500, Stock: 5}
	require.NoError(t, db.Create(&s2).Error)

	mine := seedOrder(t, db, user.ID, model.OrderStatusPaid, p1.ID, s1.ID)
	others := seedOrder(t, db, user.ID, model.OrderStatusPaid, p2.ID, s2.ID)

	vendorID := int64(1)
	items, total, err := r.List(ctx, repo.OrderListFilter{Page: 1, PageSize: 20, VendorID: &vendorID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	//明細の部分ビュー
	has, err := itemRepo.HasVendorItem(ctx, mine.ID, 1)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = itemRepo.HasVendorItem(ctx, others.ID, 1)
	require.NoError(t, err)
	assert.False(t, has)

	filtered, err := itemRepo.ListByOrderIDForVendor(ctx, mine.ID, 1)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, p1.ID, filtered[0].ProductID)
}

func TestOrderGorm_UpdateStatusMeta(t *testing.T) {
	db := openTestDB(t)
	r := NewOrderGormRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "taro", "taro@test.com")
	spec := seedSpec(t, db, 10)
	o := seedOrder(t, db, user.ID, model.OrderStatusChecked, spec.ProductID, spec.ID)

	err := r.UpdateStatus(ctx, o.ID, model.OrderStatusDelivered, repo.OrderStatusMeta{
		TrackingNumber: "JP123456789",
		ShippingInfo:   "yamato",
	})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	assert.Equal(t, "JP123456789", got.TrackingNumber)
	assert.Equal(t, "yamato", got.ShippingInfo)

	//存在しない注文は ErrNotFound
	err = r.UpdateStatus(ctx, 99999, model.OrderStatusDelivered, repo.OrderStatusMeta{})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
