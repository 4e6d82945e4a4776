package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page         int
	Limit        int
	Q            string
	MinPrice     *int64
	MaxPrice     *int64
	CollectionID *int64
	Sort         string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "sales":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:         in.Page,
		Limit:        in.Limit,
		Q:            strings.TrimSpace(in.Q),
		MinPrice:     in.MinPrice,
		MaxPrice:     in.MaxPrice,
		CollectionID: in.CollectionID,
		Sort:         in.Sort,
		ActiveOnly:   true,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type SpecInput struct {
	Value         string `json:"value"`
	Price         int64  `json:"price"`
	PurchasePrice int64  `json:"purchase_price"`
	Stock         int64  `json:"stock"`
}

type SaveProductInput struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Images       string      `json:"images"`
	LogiPrice    int64       `json:"logi_price"`
	IsActive     bool        `json:"is_active"`
	CollectionID *int64      `json:"collection_id"`
	Specs        []SpecInput `json:"specs"`
}

func validateSaveProduct(in SaveProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if in.LogiPrice < 0 {
		return NewHTTPError(http.StatusBadRequest, "logi_price must be >= 0")
	}
	if len(in.Specs) == 0 {
		return NewHTTPError(http.StatusBadRequest, "at least one spec required")
	}
	for _, s := range in.Specs {
		if strings.TrimSpace(s.Value) == "" {
			return NewHTTPError(http.StatusBadRequest, "spec value required")
		}
		if s.Price < 0 || s.PurchasePrice < 0 {
			return NewHTTPError(http.StatusBadRequest, "spec price must be >= 0")
		}
		if s.Stock < 0 {
			return NewHTTPError(http.StatusBadRequest, "spec stock must be >= 0")
		}
	}
	return nil
}

// 商品作成。VENDORは自分名義でのみ作れる
func (u *ProductUsecase) CreateProduct(ctx context.Context, actor Actor, in SaveProductInput) (int64, error) {
	if actor.UserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !actor.IsAdmin() && !actor.IsVendor() {
		return 0, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if err := validateSaveProduct(in); err != nil {
		return 0, err
	}

	specs := make([]model.ProductSpec, 0, len(in.Specs))
	for _, s := range in.Specs {
		specs = append(specs, model.ProductSpec{
			Value:         strings.TrimSpace(s.Value),
			Price:         s.Price,
			PurchasePrice: s.PurchasePrice,
			Stock:         s.Stock,
		})
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Images:       in.Images,
		LogiPrice:    in.LogiPrice,
		IsActive:     in.IsActive,
		VendorID:     actor.UserID,
		CollectionID: in.CollectionID,
		Specs:        specs,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.ID, nil
}

// 対象商品を所有チェック付きで取得
func (u *ProductUsecase) loadOwned(ctx context.Context, actor Actor, productID int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//VENDORは自分の商品だけ
	if !actor.IsAdmin() && p.VendorID != actor.UserID {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return p, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor Actor, productID int64, in SaveProductInput) error {
	if actor.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validateSaveProduct(in); err != nil {
		return err
	}

	if _, err := u.loadOwned(ctx, actor, productID); err != nil {
		return err
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:           productID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Images:       in.Images,
		LogiPrice:    in.LogiPrice,
		IsActive:     in.IsActive,
		CollectionID: in.CollectionID,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//スペック一式を入れ替える。
	//既存注文のスナップショットはorder_items側にあるので影響しない
	specs := make([]model.ProductSpec, 0, len(in.Specs))
	for _, s := range in.Specs {
		specs = append(specs, model.ProductSpec{
			Value:         strings.TrimSpace(s.Value),
			Price:         s.Price,
			PurchasePrice: s.PurchasePrice,
			Stock:         s.Stock,
		})
	}
	if err := u.productRepo.ReplaceSpecs(ctx, productID, specs); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor Actor, productID int64) error {
	if actor.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if _, err := u.loadOwned(ctx, actor, productID); err != nil {
		return err
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// スペック在庫の手動設定。履歴と監査ログを残す
func (u *ProductUsecase) UpdateSpecStock(ctx context.Context, actor Actor, productID int64, specID int64, newStock int64, reason string) error {
	if actor.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 || specID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	p, err := u.loadOwned(ctx, actor, productID)
	if err != nil {
		return err
	}

	//変更前の在庫（before）
	var before *model.ProductSpec
	for i := range p.Specs {
		if p.Specs[i].ID == specID {
			before = &p.Specs[i]
			break
		}
	}
	if before == nil {
		return NewHTTPError(http.StatusNotFound, "spec not found")
	}

	beforeJSON := fmt.Sprintf(`{"stock":%d}`, before.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d}`, newStock)

	if err := u.inventoryRepo.SetStock(ctx, specID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//履歴を作成（差分）
	adj := model.InventoryAdjustment{
		SpecID:      specID,
		AdminUserID: actor.UserID,
		Delta:       newStock - before.Stock,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   time.Now(),
	}
	if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（在庫更新）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   p.ID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 管理画面用の一覧。VENDORは自分の商品だけ、ADMINは全部
func (u *ProductUsecase) ListManagedProducts(ctx context.Context, actor Actor, in ListProductsInput) (ProductListOutput, error) {
	if actor.UserID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	q := repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		ActiveOnly: false,
	}
	if actor.IsVendor() {
		q.VendorID = &actor.UserID
	}

	items, total, err := u.productRepo.List(ctx, q)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}
