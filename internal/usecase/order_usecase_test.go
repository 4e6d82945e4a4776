package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
	"mall/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func productWithSpec(productID, specID, price, logiPrice int64) model.Product {
	return model.Product{
		ID:        productID,
		Title:     "shirt",
		LogiPrice: logiPrice,
		IsActive:  true,
		VendorID:  9,
		Specs: []model.ProductSpec{
			{ID: specID, ProductID: productID, Value: "white/L", Price: price, Stock: 10},
		},
	}
}

func newOrderUC(tm *fakeTxManager, orders *MockOrderRepository, items *MockOrderItemRepository, addresses *MockAddressRepository) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(tm, orders, items, addresses)
}

func TestOrderUsecase_Checkout_Success(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	addresses := new(MockAddressRepository)

	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(true, nil)

	tm.repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(productWithSpec(100, 200, 1500, 300), nil)
	tm.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(2)).
		Return(true, nil)

	//合計 = 1500*2 + 300
	tm.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.AddressID == 5 &&
			o.Status == model.OrderStatusPaid &&
			o.TotalPrice == 3300 &&
			o.PaidAt != nil &&
			len(o.Items) == 1 &&
			o.Items[0].Price == 1500 &&
			o.Items[0].LogiPrice == 300 &&
			o.Items[0].SpecInfo == "white/L" &&
			o.Items[0].Quantity == 2
	})).Return(int64(77), nil)

	tm.repos.products.On("IncreaseSales", mock.Anything, int64(100), int64(2)).Return(nil)
	tm.repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateOrder && l.ResourceID == 77
	})).Return(nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), addresses)

	out, err := uc.Checkout(ctx, 1, usecase.CheckoutInput{
		AddressID: 5,
		Items: []usecase.CheckoutItemInput{
			{ProductID: 100, SpecID: 200, Quantity: 2},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].OK)
	assert.Equal(t, int64(77), out.Results[0].OrderID)
	assert.Equal(t, 1, tm.calls)

	tm.repos.products.AssertExpectations(t)
	tm.repos.inventory.AssertExpectations(t)
	tm.repos.orders.AssertExpectations(t)
	tm.repos.auditLogs.AssertExpectations(t)
}

// 明細ごとに独立した注文になる。1行の在庫切れは他の行を止めない
func TestOrderUsecase_Checkout_PartialFailure(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	addresses := new(MockAddressRepository)

	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(true, nil)

	tm.repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(productWithSpec(100, 200, 1000, 0), nil)
	tm.repos.products.On("FindByID", mock.Anything, int64(101)).
		Return(productWithSpec(101, 201, 2000, 0), nil)

	//1行目は在庫あり、2行目は在庫切れ
	tm.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(1)).
		Return(true, nil)
	tm.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(201), int64(1)).
		Return(false, nil)

	tm.repos.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).
		Return(int64(81), nil).Once()
	tm.repos.products.On("IncreaseSales", mock.Anything, int64(100), int64(1)).Return(nil)
	tm.repos.auditLogs.On("Create", mock.Anything, mock.AnythingOfType("model.AuditLog")).Return(nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), addresses)

	out, err := uc.Checkout(ctx, 1, usecase.CheckoutInput{
		AddressID: 5,
		Items: []usecase.CheckoutItemInput{
			{ProductID: 100, SpecID: 200, Quantity: 1},
			{ProductID: 101, SpecID: 201, Quantity: 1},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, out.Results, 2)

	assert.True(t, out.Results[0].OK)
	assert.Equal(t, int64(81), out.Results[0].OrderID)

	assert.False(t, out.Results[1].OK)
	assert.Equal(t, "insufficient stock", out.Results[1].Error)
	assert.Zero(t, out.Results[1].OrderID)

	//在庫切れの行では注文も販売数加算も起きない
	tm.repos.products.AssertNotCalled(t, "IncreaseSales", mock.Anything, int64(101), mock.Anything)
	assert.Equal(t, 2, tm.calls)
}

func TestOrderUsecase_Checkout_AllFailed(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	addresses := new(MockAddressRepository)

	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(true, nil)

	tm.repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(productWithSpec(100, 200, 1000, 0), nil)
	tm.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(3)).
		Return(false, nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), addresses)

	_, err := uc.Checkout(ctx, 1, usecase.CheckoutInput{
		AddressID: 5,
		Items:     []usecase.CheckoutItemInput{{ProductID: 100, SpecID: 200, Quantity: 3}},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "insufficient stock", he.Message)

	tm.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_AddressNotOwned(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	addresses := new(MockAddressRepository)

	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(false, nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), addresses)

	_, err := uc.Checkout(ctx, 1, usecase.CheckoutInput{
		AddressID: 5,
		Items:     []usecase.CheckoutItemInput{{ProductID: 100, SpecID: 200, Quantity: 1}},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, 0, tm.calls)
}

func TestOrderUsecase_Checkout_ValidatesQuantity(t *testing.T) {
	uc := newOrderUC(newFakeTxManager(), new(MockOrderRepository), new(MockOrderItemRepository), new(MockAddressRepository))

	_, err := uc.Checkout(context.Background(), 1, usecase.CheckoutInput{
		AddressID: 5,
		Items:     []usecase.CheckoutItemInput{{ProductID: 100, SpecID: 200, Quantity: 0}},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestOrderUsecase_GetMyOrder_HidesOthers(t *testing.T) {
	ctx := context.Background()

	orders := new(MockOrderRepository)
	orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID:     10,
		UserID: 2, //別人の注文
		Status: model.OrderStatusPaid,
	}, nil)

	uc := newOrderUC(newFakeTxManager(), orders, new(MockOrderItemRepository), new(MockAddressRepository))

	_, err := uc.GetMyOrder(ctx, 1, 10)

	//403ではなく404で存在ごと隠す
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestOrderUsecase_ConfirmReceived_Success(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	tm.repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID:     10,
		UserID: 1,
		Status: model.OrderStatusDelivered,
	}, nil)
	tm.repos.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCompleted, repo.OrderStatusMeta{}).
		Return(nil)
	tm.repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCompleteOrder && l.ResourceID == 10
	})).Return(nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), new(MockAddressRepository))

	err := uc.ConfirmReceived(ctx, 1, 10)
	assert.NoError(t, err)
	tm.repos.orders.AssertExpectations(t)
}

func TestOrderUsecase_ConfirmReceived_WrongStatus(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	tm.repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID:     10,
		UserID: 1,
		Status: model.OrderStatusPaid,
	}, nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), new(MockAddressRepository))

	err := uc.ConfirmReceived(ctx, 1, 10)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	tm.repos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// キャンセルは在庫と販売数を同一Txで巻き戻す
func TestOrderUsecase_Cancel_RestoresStockAndSales(t *testing.T) {
	ctx := context.Background()

	tm := newFakeTxManager()
	tm.repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID:     10,
		UserID: 1,
		Status: model.OrderStatusChecked,
	}, nil)
	tm.repos.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{OrderID: 10, ProductID: 100, SpecID: 200, Quantity: 2},
	}, nil)
	tm.repos.inventory.On("IncreaseStock", mock.Anything, int64(200), int64(2)).Return(nil)
	tm.repos.products.On("DecreaseSales", mock.Anything, int64(100), int64(2)).Return(nil)
	tm.repos.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCancelled, repo.OrderStatusMeta{}).
		Return(nil)
	tm.repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCancelOrder
	})).Return(nil)

	uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), new(MockAddressRepository))

	err := uc.Cancel(ctx, 1, 10)
	assert.NoError(t, err)

	tm.repos.inventory.AssertExpectations(t)
	tm.repos.products.AssertExpectations(t)
	tm.repos.orders.AssertExpectations(t)
}

func TestOrderUsecase_Cancel_RejectedAfterDelivery(t *testing.T) {
	ctx := context.Background()

	for _, status := range []model.OrderStatus{
		model.OrderStatusDelivered,
		model.OrderStatusCompleted,
		model.OrderStatusCancelled,
	} {
		tm := newFakeTxManager()
		tm.repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
			ID:     10,
			UserID: 1,
			Status: status,
		}, nil)

		uc := newOrderUC(tm, new(MockOrderRepository), new(MockOrderItemRepository), new(MockAddressRepository))

		err := uc.Cancel(ctx, 1, 10)

		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok, "status=%s", status)
		assert.Equal(t, http.StatusBadRequest, he.Status, "status=%s", status)
		tm.repos.inventory.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	}
}
