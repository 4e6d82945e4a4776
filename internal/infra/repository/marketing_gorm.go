package repository

import (
	"context"
	"errors"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

//バナー・コレクション・動画講座。どれも単純なCRUDなので1ファイルにまとめる

type bannerGormRepository struct {
	db *gorm.DB
}

func NewBannerGormRepository(db *gorm.DB) repo.BannerRepository {
	return &bannerGormRepository{db: db}
}

func (r *bannerGormRepository) List(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	q := r.db.WithContext(ctx).Model(&model.Banner{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var banners []model.Banner
	if err := q.Order("sort ASC, id ASC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *bannerGormRepository) FindByID(ctx context.Context, id int64) (model.Banner, error) {
	var b model.Banner
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Banner{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Banner{}, err
	}
	return b, nil
}

func (r *bannerGormRepository) Create(ctx context.Context, b model.Banner) (model.Banner, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Banner{}, err
	}
	return b, nil
}

func (r *bannerGormRepository) Update(ctx context.Context, b model.Banner) error {
	res := r.db.WithContext(ctx).
		Model(&model.Banner{}).
		Where("id = ?", b.ID).
		Select("image", "link", "sort", "is_active").
		Updates(b)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *bannerGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Banner{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type collectionGormRepository struct {
	db *gorm.DB
}

func NewCollectionGormRepository(db *gorm.DB) repo.CollectionRepository {
	return &collectionGormRepository{db: db}
}

func (r *collectionGormRepository) List(ctx context.Context, activeOnly bool) ([]model.Collection, error) {
	q := r.db.WithContext(ctx).Model(&model.Collection{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var cols []model.Collection
	if err := q.Order("sort ASC, id ASC").Find(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

func (r *collectionGormRepository) FindByID(ctx context.Context, id int64) (model.Collection, error) {
	var c model.Collection
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Collection{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Collection{}, err
	}
	return c, nil
}

func (r *collectionGormRepository) Create(ctx context.Context, c model.Collection) (model.Collection, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Collection{}, err
	}
	return c, nil
}

func (r *collectionGormRepository) Update(ctx context.Context, c model.Collection) error {
	res := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ?", c.ID).
		Select("title", "description", "sort", "is_active").
		Updates(c)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *collectionGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Collection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type courseGormRepository struct {
	db *gorm.DB
}

func NewCourseGormRepository(db *gorm.DB) repo.CourseRepository {
	return &courseGormRepository{db: db}
}

func (r *courseGormRepository) List(ctx context.Context, activeOnly bool, page int, limit int) ([]model.Course, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := r.db.WithContext(ctx).Model(&model.Course{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Course{}, 0, err
	}

	var courses []model.Course
	offset := (page - 1) * limit
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&courses).Error; err != nil {
		return []model.Course{}, 0, err
	}
	return courses, total, nil
}

func (r *courseGormRepository) FindByID(ctx context.Context, id int64) (model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Course{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Course{}, err
	}
	return c, nil
}

func (r *courseGormRepository) Create(ctx context.Context, c model.Course) (model.Course, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Course{}, err
	}
	return c, nil
}

func (r *courseGormRepository) Update(ctx context.Context, c model.Course) error {
	res := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("id = ?", c.ID).
		Select("title", "cover", "video_url", "price", "is_active").
		Updates(c)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *courseGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
