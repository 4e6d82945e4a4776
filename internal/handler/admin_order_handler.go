package handler

import (
	"net/http"
	"strconv"

	"mall/internal/config"
	"mall/internal/middleware"
	repo "mall/internal/repository"
	"mall/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderBatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repo.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.GET("/orders/stats", h.stats)
	admin.GET("/orders/:id", h.detail)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.DELETE("/orders/:id", h.delete)
	admin.POST("/orders/batch-delete", h.batchDelete)

	//出店者向け。自分の商品を含む注文だけが見える
	vendor := e.Group("/vendor")
	vendor.Use(middleware.AuthJWT(cfg))
	vendor.Use(middleware.TokenVersionGuard(userRepo))
	vendor.Use(middleware.VendorRoleGuard())

	vendor.GET("/orders", h.vendorList)
	vendor.GET("/orders/:id", h.detail)
	vendor.PUT("/orders/:id/status", h.updateStatus)
}

// クエリから一覧条件を組み立てる。パース失敗時は400を書き込んでfalseを返す
func parseOrderListInput(c echo.Context) (usecase.AdminOrderListInput, bool) {
	in := usecase.AdminOrderListInput{Page: 1, PageSize: 50}

	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
			return in, false
		}
		in.Page = p
	}
	if v := c.QueryParam("page_size"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page_size"})
			return in, false
		}
		in.PageSize = l
	}

	in.Status = c.QueryParam("status")
	in.Search = c.QueryParam("search")
	in.OrderBy = c.QueryParam("order_by")
	in.Desc = c.QueryParam("order") != "asc"

	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
			return in, false
		}
		in.UserID = &id
	}

	return in, true
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	in, ok := parseOrderListInput(c)
	if !ok {
		return nil
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) vendorList(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, ok := parseOrderListInput(c)
	if !ok {
		return nil
	}

	out, err := h.uc.ListForVendor(c.Request().Context(), actor.UserID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.UpdateOrderStatusInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), actor, id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), actor.UserID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *AdminOrderHandler) batchDelete(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderBatchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	deleted, err := h.uc.DeleteMany(c.Request().Context(), actor.UserID, req.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *AdminOrderHandler) stats(c echo.Context) error {
	out, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
