package repository

import (
	"context"
	"testing"

	"mall/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteのin-memory DBでrepoの実クエリを検証する
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.ProductSpec{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
	))

	return db
}

func seedSpec(t *testing.T, db *gorm.DB, stock int64) model.ProductSpec {
	t.Helper()

	p := model.Product{Title: "shirt", IsActive: true, VendorID: 1}
	require.NoError(t, db.Create(&p).Error)

	s := model.ProductSpec{ProductID: p.ID, Value: "white/L", Price: 1000, Stock: stock}
	require.NoError(t, db.Create(&s).Error)

	return s
}

func currentStock(t *testing.T, db *gorm.DB, specID int64) int64 {
	t.Helper()

	var s model.ProductSpec
	require.NoError(t, db.First(&s, specID).Error)
	return s.Stock
}

func TestInventoryGorm_DecreaseStockIfEnough(t *testing.T) {
	db := openTestDB(t)
	r := NewInventoryGormRepository(db)
	ctx := context.Background()

	spec := seedSpec(t, db, 5)

	ok, err := r.DecreaseStockIfEnough(ctx, spec.ID, 3)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), currentStock(t, db, spec.ID))

	//残り2に対して3は引けない。在庫は変わらない
	ok, err = r.DecreaseStockIfEnough(ctx, spec.ID, 3)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(2), currentStock(t, db, spec.ID))

	//ちょうど残り全部は引ける
	ok, err = r.DecreaseStockIfEnough(ctx, spec.ID, 2)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), currentStock(t, db, spec.ID))

	//在庫0からは1も引けない
	ok, err = r.DecreaseStockIfEnough(ctx, spec.ID, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), currentStock(t, db, spec.ID))
}

func TestInventoryGorm_IncreaseStock(t *testing.T) {
	db := openTestDB(t)
	r := NewInventoryGormRepository(db)
	ctx := context.Background()

	spec := seedSpec(t, db, 1)

	require.NoError(t, r.IncreaseStock(ctx, spec.ID, 4))
	assert.Equal(t, int64(5), currentStock(t, db, spec.ID))
}

// 減らして戻すと元の在庫に一致する（キャンセルの巻き戻し）
func TestInventoryGorm_DecreaseThenIncreaseRoundTrip(t *testing.T) {
	db := openTestDB(t)
	r := NewInventoryGormRepository(db)
	ctx := context.Background()

	spec := seedSpec(t, db, 7)

	ok, err := r.DecreaseStockIfEnough(ctx, spec.ID, 4)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.IncreaseStock(ctx, spec.ID, 4))
	assert.Equal(t, int64(7), currentStock(t, db, spec.ID))
}

func TestInventoryGorm_SetStockAndAdjustment(t *testing.T) {
	db := openTestDB(t)
	r := NewInventoryGormRepository(db)
	ctx := context.Background()

	spec := seedSpec(t, db, 10)

	require.NoError(t, r.SetStock(ctx, spec.ID, 25))
	assert.Equal(t, int64(25), currentStock(t, db, spec.ID))

	require.NoError(t, r.CreateAdjustment(ctx, model.InventoryAdjustment{
		SpecID:      spec.ID,
		AdminUserID: 99,
		Delta:       15,
		Reason:      "restock",
	}))

	var count int64
	require.NoError(t, db.Model(&model.InventoryAdjustment{}).Where("spec_id = ?", spec.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
