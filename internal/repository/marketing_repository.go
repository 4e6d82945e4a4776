package repository

import (
	"context"

	"mall/internal/domain/model"
)

// バナーの保存・取得
type BannerRepository interface {
	//activeOnly=trueなら公開中のみ。sort昇順
	List(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	FindByID(ctx context.Context, id int64) (model.Banner, error)
	Create(ctx context.Context, b model.Banner) (model.Banner, error)
	Update(ctx context.Context, b model.Banner) error
	Delete(ctx context.Context, id int64) error
}

// コレクション（カテゴリ）の保存・取得
type CollectionRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.Collection, error)
	FindByID(ctx context.Context, id int64) (model.Collection, error)
	Create(ctx context.Context, c model.Collection) (model.Collection, error)
	Update(ctx context.Context, c model.Collection) error
	Delete(ctx context.Context, id int64) error
}

// 動画講座の保存・取得
type CourseRepository interface {
	List(ctx context.Context, activeOnly bool, page int, limit int) ([]model.Course, int64, error)
	FindByID(ctx context.Context, id int64) (model.Course, error)
	Create(ctx context.Context, c model.Course) (model.Course, error)
	Update(ctx context.Context, c model.Course) error
	Delete(ctx context.Context, id int64) error
}
