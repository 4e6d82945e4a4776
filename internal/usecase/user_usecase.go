package usecase

import (
	"context"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

// 管理画面のユーザー管理
type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type UserListInput struct {
	Page   int
	Limit  int
	Role   string
	Search string
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *UserUsecase) List(ctx context.Context, in UserListInput) (UserListOutput, error) {
	if in.Page < 1 || in.Limit < 1 || in.Limit > 100 {
		return UserListOutput{}, ErrValidation
	}
	switch model.Role(in.Role) {
	case "", model.RoleUser, model.RoleVendor, model.RoleAdmin:
	default:
		return UserListOutput{}, ErrValidation
	}

	users, total, err := u.users.List(ctx, repo.UserListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Role:   in.Role,
		Search: in.Search,
	})
	if err != nil {
		return UserListOutput{}, ErrInternal
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return UserListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

type UserUpdateRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ロール変更・アカウント停止/再開。自分自身の降格は許さない
func (u *UserUsecase) UpdateUser(ctx context.Context, adminID int64, targetUserID int64, req UserUpdateRequest) (*UserDTO, error) {
	if targetUserID <= 0 {
		return nil, ErrValidation
	}
	if req.Role == nil && req.IsActive == nil {
		return nil, ErrValidation
	}
	if adminID == targetUserID {
		return nil, ErrForbidden
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if req.Role != nil {
		switch model.Role(*req.Role) {
		case model.RoleUser, model.RoleVendor, model.RoleAdmin:
			user.Role = model.Role(*req.Role)
		default:
			return nil, ErrValidation
		}
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &dto, nil
}
