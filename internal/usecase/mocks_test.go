package usecase_test

import (
	"context"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ReplaceSpecs(ctx context.Context, productID int64, specs []model.ProductSpec) error {
	args := m.Called(ctx, productID, specs)
	return args.Error(0)
}

func (m *MockProductRepository) IncreaseSales(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockProductRepository) DecreaseSales(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

// =====================
// Mock: InventoryRepository
// =====================

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) SetStock(ctx context.Context, specID int64, newStock int64) error {
	args := m.Called(ctx, specID, newStock)
	return args.Error(0)
}

func (m *MockInventoryRepository) DecreaseStockIfEnough(ctx context.Context, specID int64, qty int64) (bool, error) {
	args := m.Called(ctx, specID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) IncreaseStock(ctx context.Context, specID int64, qty int64) error {
	args := m.Called(ctx, specID, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, meta repo.OrderStatusMeta) error {
	args := m.Called(ctx, orderID, status, meta)
	return args.Error(0)
}

func (m *MockOrderRepository) SoftDelete(ctx context.Context, orderIDs []int64) (int64, error) {
	args := m.Called(ctx, orderIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (repo.OrderStatusCounts, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(repo.OrderStatusCounts)
	return c, args.Error(1)
}

// =====================
// Mock: OrderItemRepository
// =====================

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *MockOrderItemRepository) ListByOrderIDForVendor(ctx context.Context, orderID int64, vendorID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID, vendorID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *MockOrderItemRepository) HasVendorItem(ctx context.Context, orderID int64, vendorID int64) (bool, error) {
	args := m.Called(ctx, orderID, vendorID)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: AddressRepository
// =====================

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *MockAddressRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Address)
	return items, args.Error(1)
}

func (m *MockAddressRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *MockAddressRepository) Update(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *MockAddressRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAddressRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

// =====================
// Mock: LotteryRepository
// =====================

type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) FindActivityByID(ctx context.Context, activityID int64) (model.Activity, error) {
	args := m.Called(ctx, activityID)
	a, _ := args.Get(0).(model.Activity)
	return a, args.Error(1)
}

func (m *MockLotteryRepository) CreateActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Activity)
	return out, args.Error(1)
}

func (m *MockLotteryRepository) UpdateActivity(ctx context.Context, a model.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockLotteryRepository) CreateTickets(ctx context.Context, tickets []model.LotteryTicket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockLotteryRepository) FindTicketBySecret(ctx context.Context, secret string) (model.LotteryTicket, error) {
	args := m.Called(ctx, secret)
	t, _ := args.Get(0).(model.LotteryTicket)
	return t, args.Error(1)
}

func (m *MockLotteryRepository) UseTicketIfUnused(ctx context.Context, secret string) (bool, error) {
	args := m.Called(ctx, secret)
	return args.Bool(0), args.Error(1)
}

func (m *MockLotteryRepository) DecreasePrizeStockIfEnough(ctx context.Context, prizeID int64) (bool, error) {
	args := m.Called(ctx, prizeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLotteryRepository) SetTicketResult(ctx context.Context, ticketID int64, userID int64, prizeID int64, drawnAt time.Time) error {
	args := m.Called(ctx, ticketID, userID, prizeID, drawnAt)
	return args.Error(0)
}

// =====================
// Fake: TransactionManager
// =====================

// fnに渡すrepo一式をmockで差し替えるTxManager。
// rollbackの検証はfnが返すerrorで行う
type fakeTxRepos struct {
	orders     *MockOrderRepository
	orderItems *MockOrderItemRepository
	products   *MockProductRepository
	inventory  *MockInventoryRepository
	lottery    *MockLotteryRepository
	auditLogs  *MockAuditLogRepository
}

func (r *fakeTxRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *fakeTxRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *fakeTxRepos) Products() repo.ProductRepository     { return r.products }
func (r *fakeTxRepos) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *fakeTxRepos) Lottery() repo.LotteryRepository      { return r.lottery }
func (r *fakeTxRepos) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

type fakeTxManager struct {
	repos *fakeTxRepos

	//WithinTxが呼ばれた回数
	calls int
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{
		repos: &fakeTxRepos{
			orders:     new(MockOrderRepository),
			orderItems: new(MockOrderItemRepository),
			products:   new(MockProductRepository),
			inventory:  new(MockInventoryRepository),
			lottery:    new(MockLotteryRepository),
			auditLogs:  new(MockAuditLogRepository),
		},
	}
}

func (tm *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.calls++
	return fn(tm.repos)
}
