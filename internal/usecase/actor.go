package usecase

import "mall/internal/domain/model"

// 呼び出し元の身元。権限分岐はロールのタグで行う
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) IsVendor() bool {
	return a.Role == model.RoleVendor
}
