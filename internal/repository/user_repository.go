package repository

import (
	"context"

	"mall/internal/domain/model"
)

type UserListFilter struct {
	Page   int
	Limit  int
	Role   string
	Search string //名前・メールの部分一致
}

// ユーザーの保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	//アクティブ・ロール・最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error

	//トークンのバージョンを+1（強制ログアウト）
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//管理画面の一覧
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
}
