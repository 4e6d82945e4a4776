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

// 管理画面のユーザー管理API
type AdminUserHandler struct {
	userUC *usecase.UserUsecase
	authUC *usecase.AuthUsecase
}

func NewAdminUserHandler(userUC *usecase.UserUsecase, authUC *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{userUC: userUC, authUC: authUC}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repo.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/users", h.list)
	admin.PATCH("/users/:id", h.update)
	admin.POST("/users/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return addrWriteError(c, http.StatusBadRequest, "validation error")
		}
		page = p
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return addrWriteError(c, http.StatusBadRequest, "validation error")
		}
		limit = l
	}

	out, err := h.userUC.List(c.Request().Context(), usecase.UserListInput{
		Page:   page,
		Limit:  limit,
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	var req usecase.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	out, err := h.userUC.UpdateUser(c.Request().Context(), adminID, id, req)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	out, err := h.authUC.ForceLogout(c.Request().Context(), id)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
