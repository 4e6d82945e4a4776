package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	orderRepo   repo.OrderRepository
	itemRepo    repo.OrderItemRepository
	addressRepo repo.AddressRepository
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
	addressRepo repo.AddressRepository,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		addressRepo: addressRepo,
	}
}

// 購入リクエストの明細1行分
type CheckoutItemInput struct {
	ProductID int64  `json:"product_id"`
	SpecID    int64  `json:"spec_id"`
	Quantity  int64  `json:"quantity"`
	Remark    string `json:"remark"`
}

type CheckoutInput struct {
	AddressID int64               `json:"address_id"`
	Items     []CheckoutItemInput `json:"items"`
}

// 明細ごとの結果。1行が在庫切れでも他の行の注文は成立する
type CheckoutItemResult struct {
	ProductID int64  `json:"product_id"`
	SpecID    int64  `json:"spec_id"`
	OrderID   int64  `json:"order_id,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type CheckoutOutput struct {
	Results []CheckoutItemResult `json:"results"`
}

func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "address_id required")
	}
	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	if len(in.Items) > 50 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "too many items")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.SpecID <= 0 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
		if it.Quantity < 1 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
		}
		if len(it.Remark) > 500 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "remark too long")
		}
	}

	//住所が本人のものか
	owned, err := u.addressRepo.IsOwnedByUser(ctx, in.AddressID, userID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	//明細ごとに独立したトランザクションで注文を1件ずつ作る。
	//1行が失敗しても他の行は成立し、失敗理由は結果に残す
	out := CheckoutOutput{Results: make([]CheckoutItemResult, 0, len(in.Items))}
	allFailed := true

	for _, it := range in.Items {
		result := CheckoutItemResult{ProductID: it.ProductID, SpecID: it.SpecID}

		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return u.placeOne(ctx, r, userID, in.AddressID, it, &result)
		})
		if err != nil {
			if he, ok := AsHTTPError(err); ok {
				result.Error = he.Message
			} else {
				result.Error = "db error"
			}
			result.OK = false
			result.OrderID = 0
		} else {
			result.OK = true
			allFailed = false
		}
		out.Results = append(out.Results, result)
	}

	if allFailed {
		//全滅のときだけエラー扱い。先頭の理由を返す
		return out, NewHTTPError(http.StatusConflict, out.Results[0].Error)
	}
	return out, nil
}

// 1明細＝1注文。検証→在庫減算→注文INSERT→販売数加算→監査ログ、を1Txで行う
func (u *OrderUsecase) placeOne(ctx context.Context, r repo.TxRepos, userID int64, addressID int64, it CheckoutItemInput, result *CheckoutItemResult) error {
	p, err := r.Products().FindByID(ctx, it.ProductID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}
	if !p.IsActive {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}

	var spec *model.ProductSpec
	for i := range p.Specs {
		if p.Specs[i].ID == it.SpecID {
			spec = &p.Specs[i]
			break
		}
	}
	if spec == nil {
		return NewHTTPError(http.StatusNotFound, "spec not found")
	}

	//条件付きUPDATE1文で在庫を引く。足りなければここで止まる
	ok, err := r.Inventory().DecreaseStockIfEnough(ctx, spec.ID, it.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return NewHTTPError(http.StatusConflict, "insufficient stock")
	}

	now := time.Now()
	total := spec.Price*it.Quantity + p.LogiPrice

	orderID, err := r.Orders().Create(ctx, model.Order{
		UserID:     userID,
		AddressID:  addressID,
		Status:     model.OrderStatusPaid,
		TotalPrice: total,
		PaidAt:     &now,
		Items: []model.OrderItem{
			{
				ProductID: p.ID,
				SpecID:    spec.ID,
				Quantity:  it.Quantity,
				Price:     spec.Price,
				LogiPrice: p.LogiPrice,
				SpecInfo:  spec.Value,
				Remark:    it.Remark,
			},
		},
	})
	if err != nil {
		return err
	}

	if err := r.Products().IncreaseSales(ctx, p.ID, it.Quantity); err != nil {
		return err
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  userID,
		Action:       model.AuditActionCreateOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		AfterJSON:    fmt.Sprintf(`{"status":"PAID","total_price":%d,"spec_id":%d,"quantity":%d}`, total, spec.ID, it.Quantity),
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	result.OrderID = orderID
	return nil
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 自分の注文一覧
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int, status string) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if status != "" && !isValidStatus(status) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.orderRepo.List(ctx, repo.OrderListFilter{
		Page:     page,
		PageSize: limit,
		Status:   status,
		UserID:   &userID,
		OrderBy:  "created_at",
		Desc:     true,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 自分の注文詳細。他人の注文は存在ごと隠す
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
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
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}

// 受取確認。DELIVEREDの自分の注文だけCOMPLETEDにできる
func (u *OrderUsecase) ConfirmReceived(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status != model.OrderStatusDelivered {
			return NewHTTPError(http.StatusBadRequest, "order cannot be completed")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCompleted, repo.OrderStatusMeta{}); err != nil {
			return err
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionCompleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"DELIVERED"}`,
			AfterJSON:    `{"status":"COMPLETED"}`,
			CreatedAt:    time.Now(),
		})
	})
}

// キャンセル。PAID/CHECKEDのみ可。在庫と販売数を同一Txで巻き戻す
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status != model.OrderStatusPaid && o.Status != model.OrderStatusChecked {
			return NewHTTPError(http.StatusBadRequest, "order cannot be cancelled")
		}

		if err := restoreOrderInventory(ctx, r, orderID); err != nil {
			return err
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled, repo.OrderStatusMeta{}); err != nil {
			return err
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, o.Status),
			AfterJSON:    `{"status":"CANCELLED"}`,
			CreatedAt:    time.Now(),
		})
	})
}

// 注文明細ぶんの在庫と販売数を戻す。キャンセル処理の共通部分
func restoreOrderInventory(ctx context.Context, r repo.TxRepos, orderID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := r.Inventory().IncreaseStock(ctx, it.SpecID, it.Quantity); err != nil {
			return err
		}
		if err := r.Products().DecreaseSales(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func isValidStatus(s string) bool {
	switch model.OrderStatus(s) {
	case model.OrderStatusPaid, model.OrderStatusChecked, model.OrderStatusDelivered,
		model.OrderStatusCompleted, model.OrderStatusCancelled:
		return true
	}
	return false
}
