package usecase

import (
	"context"
	"net/http"
	"strings"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

// バナー・コレクション・動画講座の表示と管理
type MarketingUsecase struct {
	banners     repo.BannerRepository
	collections repo.CollectionRepository
	courses     repo.CourseRepository
}

func NewMarketingUsecase(
	banners repo.BannerRepository,
	collections repo.CollectionRepository,
	courses repo.CourseRepository,
) *MarketingUsecase {
	return &MarketingUsecase{
		banners:     banners,
		collections: collections,
		courses:     courses,
	}
}

func (u *MarketingUsecase) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	banners, err := u.banners.List(ctx, activeOnly)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return banners, nil
}

type BannerSaveInput struct {
	Image    string `json:"image"`
	Link     string `json:"link"`
	Sort     int    `json:"sort"`
	IsActive bool   `json:"is_active"`
}

func (u *MarketingUsecase) CreateBanner(ctx context.Context, in BannerSaveInput) (model.Banner, error) {
	if strings.TrimSpace(in.Image) == "" {
		return model.Banner{}, NewHTTPError(http.StatusBadRequest, "image required")
	}

	b, err := u.banners.Create(ctx, model.Banner{
		Image:    in.Image,
		Link:     in.Link,
		Sort:     in.Sort,
		IsActive: in.IsActive,
	})
	if err != nil {
		return model.Banner{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return b, nil
}

func (u *MarketingUsecase) UpdateBanner(ctx context.Context, id int64, in BannerSaveInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Image) == "" {
		return NewHTTPError(http.StatusBadRequest, "image required")
	}

	err := u.banners.Update(ctx, model.Banner{
		ID:       id,
		Image:    in.Image,
		Link:     in.Link,
		Sort:     in.Sort,
		IsActive: in.IsActive,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MarketingUsecase) DeleteBanner(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.banners.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MarketingUsecase) ListCollections(ctx context.Context, activeOnly bool) ([]model.Collection, error) {
	cols, err := u.collections.List(ctx, activeOnly)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cols, nil
}

type CollectionSaveInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Sort        int    `json:"sort"`
	IsActive    bool   `json:"is_active"`
}

func (u *MarketingUsecase) CreateCollection(ctx context.Context, in CollectionSaveInput) (model.Collection, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Collection{}, NewHTTPError(http.StatusBadRequest, "title required")
	}

	c, err := u.collections.Create(ctx, model.Collection{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Sort:        in.Sort,
		IsActive:    in.IsActive,
	})
	if err != nil {
		return model.Collection{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MarketingUsecase) UpdateCollection(ctx context.Context, id int64, in CollectionSaveInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}

	err := u.collections.Update(ctx, model.Collection{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Sort:        in.Sort,
		IsActive:    in.IsActive,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MarketingUsecase) DeleteCollection(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.collections.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type CourseListOutput struct {
	Items []model.Course `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *MarketingUsecase) ListCourses(ctx context.Context, activeOnly bool, page int, limit int) (CourseListOutput, error) {
	if page < 1 {
		return CourseListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CourseListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.courses.List(ctx, activeOnly, page, limit)
	if err != nil {
		return CourseListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return CourseListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *MarketingUsecase) GetCourse(ctx context.Context, id int64) (model.Course, error) {
	if id <= 0 {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.courses.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Course{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Course{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !c.IsActive {
		return model.Course{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return c, nil
}

type CourseSaveInput struct {
	Title    string `json:"title"`
	Cover    string `json:"cover"`
	VideoURL string `json:"video_url"`
	Price    int64  `json:"price"`
	IsActive bool   `json:"is_active"`
}

func (u *MarketingUsecase) CreateCourse(ctx context.Context, in CourseSaveInput) (model.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "video_url required")
	}
	if in.Price < 0 {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	c, err := u.courses.Create(ctx, model.Course{
		Title:    strings.TrimSpace(in.Title),
		Cover:    in.Cover,
		VideoURL: in.VideoURL,
		Price:    in.Price,
		IsActive: in.IsActive,
	})
	if err != nil {
		return model.Course{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MarketingUsecase) UpdateCourse(ctx context.Context, id int64, in CourseSaveInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		return NewHTTPError(http.StatusBadRequest, "video_url required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}

	err := u.courses.Update(ctx, model.Course{
		ID:       id,
		Title:    strings.TrimSpace(in.Title),
		Cover:    in.Cover,
		VideoURL: in.VideoURL,
		Price:    in.Price,
		IsActive: in.IsActive,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MarketingUsecase) DeleteCourse(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.courses.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
