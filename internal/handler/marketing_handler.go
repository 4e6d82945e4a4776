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

// バナー・コレクション・動画講座のAPI。
// 公開側は認証なし、管理側はADMINのみ
type MarketingHandler struct {
	uc *usecase.MarketingUsecase
}

func NewMarketingHandler(uc *usecase.MarketingUsecase) *MarketingHandler {
	return &MarketingHandler{uc: uc}
}

func (h *MarketingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repo.UserRepository) {
	e.GET("/banners", h.listBanners)
	e.GET("/collections", h.listCollections)
	e.GET("/courses", h.listCourses)
	e.GET("/courses/:id", h.courseDetail)

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/banners", h.adminListBanners)
	admin.POST("/banners", h.createBanner)
	admin.PUT("/banners/:id", h.updateBanner)
	admin.DELETE("/banners/:id", h.deleteBanner)

	admin.GET("/collections", h.adminListCollections)
	admin.POST("/collections", h.createCollection)
	admin.PUT("/collections/:id", h.updateCollection)
	admin.DELETE("/collections/:id", h.deleteCollection)

	admin.GET("/courses", h.adminListCourses)
	admin.POST("/courses", h.createCourse)
	admin.PUT("/courses/:id", h.updateCourse)
	admin.DELETE("/courses/:id", h.deleteCourse)
}

func (h *MarketingHandler) listBanners(c echo.Context) error {
	out, err := h.uc.ListBanners(c.Request().Context(), true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) adminListBanners(c echo.Context) error {
	out, err := h.uc.ListBanners(c.Request().Context(), false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) createBanner(c echo.Context) error {
	var req usecase.BannerSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateBanner(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) updateBanner(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.BannerSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateBanner(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

func (h *MarketingHandler) deleteBanner(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteBanner(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *MarketingHandler) listCollections(c echo.Context) error {
	out, err := h.uc.ListCollections(c.Request().Context(), true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) adminListCollections(c echo.Context) error {
	out, err := h.uc.ListCollections(c.Request().Context(), false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) createCollection(c echo.Context) error {
	var req usecase.CollectionSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCollection(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) updateCollection(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.CollectionSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateCollection(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

func (h *MarketingHandler) deleteCollection(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteCollection(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *MarketingHandler) listCourses(c echo.Context) error {
	page, limit, ok := parsePageLimit(c, 20)
	if !ok {
		return nil
	}

	out, err := h.uc.ListCourses(c.Request().Context(), true, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) adminListCourses(c echo.Context) error {
	page, limit, ok := parsePageLimit(c, 50)
	if !ok {
		return nil
	}

	out, err := h.uc.ListCourses(c.Request().Context(), false, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) courseDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetCourse(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) createCourse(c echo.Context) error {
	var req usecase.CourseSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCourse(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) updateCourse(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.CourseSaveInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateCourse(c.Request().Context(), id, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

func (h *MarketingHandler) deleteCourse(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteCourse(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

// page/limitのクエリを読む。パース失敗時は400を書き込んでfalseを返す
func parsePageLimit(c echo.Context, defaultLimit int) (int, int, bool) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
			return 0, 0, false
		}
		page = p
	}

	limit := defaultLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return 0, 0, false
		}
		limit = l
	}

	return page, limit, true
}
