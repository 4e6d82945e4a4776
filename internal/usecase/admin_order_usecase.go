package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

// 遷移できるステータスの表。ここに無い組み合わせは全部拒否
var legalTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPaid:      {model.OrderStatusChecked, model.OrderStatusCancelled},
	model.OrderStatusChecked:   {model.OrderStatusDelivered, model.OrderStatusCancelled},
	model.OrderStatusDelivered: {model.OrderStatusCompleted},
	//COMPLETED/CANCELLEDは終端
}

func canTransition(from, to model.OrderStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderItemRepository
}

// DI
func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

type AdminOrderListInput struct {
	Page     int
	PageSize int
	Status   string
	UserID   *int64
	Search   string
	OrderBy  string
	Desc     bool
}

// 並び替え可能なカラムのホワイトリスト
var orderSortColumns = map[string]bool{
	"id":          true,
	"created_at":  true,
	"total_price": true,
	"status":      true,
	"paid_at":     true,
}

func validateOrderList(in AdminOrderListInput) error {
	if in.Page < 1 {
		return NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PageSize < 1 || in.PageSize > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid page_size")
	}
	if in.Status != "" && !isValidStatus(in.Status) {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if in.OrderBy != "" && !orderSortColumns[in.OrderBy] {
		return NewHTTPError(http.StatusBadRequest, "invalid order_by")
	}
	if len(in.Search) > 100 {
		return NewHTTPError(http.StatusBadRequest, "search too long")
	}
	return nil
}

// 管理画面の注文一覧。ユーザー概要付き
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if err := validateOrderList(in); err != nil {
		return OrderListOutput{}, err
	}

	orderBy := in.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}

	items, total, err := u.orderRepo.List(ctx, repo.OrderListFilter{
		Page:     in.Page,
		PageSize: in.PageSize,
		Status:   in.Status,
		UserID:   in.UserID,
		Search:   in.Search,
		OrderBy:  orderBy,
		Desc:     in.Desc,
		WithUser: true,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.PageSize}, nil
}

// ベンダー用の注文一覧。自分の商品を含む注文だけを返し、
// 明細も自分の商品の行に絞り込む
func (u *AdminOrderUsecase) ListForVendor(ctx context.Context, vendorID int64, in AdminOrderListInput) (OrderListOutput, error) {
	if vendorID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateOrderList(in); err != nil {
		return OrderListOutput{}, err
	}

	orderBy := in.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}

	items, total, err := u.orderRepo.List(ctx, repo.OrderListFilter{
		Page:     in.Page,
		PageSize: in.PageSize,
		Status:   in.Status,
		VendorID: &vendorID,
		Search:   in.Search,
		OrderBy:  orderBy,
		Desc:     in.Desc,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for i := range items {
		filtered, err := u.itemRepo.ListByOrderIDForVendor(ctx, items[i].ID, vendorID)
		if err != nil {
			return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items[i].Items = filtered
	}

	return OrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.PageSize}, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, actor Actor, orderID int64) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actor.IsVendor() {
		has, err := u.itemRepo.HasVendorItem(ctx, orderID, actor.UserID)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !has {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		filtered, err := u.itemRepo.ListByOrderIDForVendor(ctx, orderID, actor.UserID)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.Items = filtered
	}

	return o, nil
}

type UpdateOrderStatusInput struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	ShippingInfo   string `json:"shipping_info"`
	RefundInfo     string `json:"refund_info"`
}

// ステータス更新。同じ値への更新はno-op、遷移表に無い組み合わせは拒否。
// CANCELLEDに落とすときは在庫・販売数も同一Txで巻き戻す
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID int64, in UpdateOrderStatusInput) error {
	if actor.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	if !isValidStatus(in.Status) {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	next := model.OrderStatus(in.Status)

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		//VENDORは自分の商品を含む注文だけ触れる
		if actor.IsVendor() {
			has, err := r.OrderItems().HasVendorItem(ctx, orderID, actor.UserID)
			if err != nil {
				return err
			}
			if !has {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
		} else if !actor.IsAdmin() {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		if o.Status == next {
			//同じ値への更新は成功扱い
			return nil
		}
		if !canTransition(o.Status, next) {
			return NewHTTPError(http.StatusConflict,
				fmt.Sprintf("cannot transition from %s to %s", o.Status, next))
		}

		if next == model.OrderStatusCancelled {
			if err := restoreOrderInventory(ctx, r, orderID); err != nil {
				return err
			}
		}

		meta := repo.OrderStatusMeta{
			TrackingNumber: in.TrackingNumber,
			ShippingInfo:   in.ShippingInfo,
			RefundInfo:     in.RefundInfo,
			PaidAt:         next == model.OrderStatusPaid,
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, next, meta); err != nil {
			return err
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, o.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, next),
			CreatedAt:    time.Now(),
		})
	})
}

// 論理削除。冪等で、削除済みIDが混ざっていてもエラーにしない
func (u *AdminOrderUsecase) Delete(ctx context.Context, adminID int64, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	_, err := u.orderRepo.SoftDelete(ctx, []int64{orderID})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AdminOrderUsecase) DeleteMany(ctx context.Context, adminID int64, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "ids required")
	}
	if len(orderIDs) > 100 {
		return 0, NewHTTPError(http.StatusBadRequest, "too many ids")
	}
	for _, id := range orderIDs {
		if id <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, "invalid order id")
		}
	}

	n, err := u.orderRepo.SoftDelete(ctx, orderIDs)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

// ダッシュボード用のステータス別件数
func (u *AdminOrderUsecase) Stats(ctx context.Context) (repo.OrderStatusCounts, error) {
	counts, err := u.orderRepo.CountByStatus(ctx)
	if err != nil {
		return repo.OrderStatusCounts{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return counts, nil
}
