package repository

import (
	"context"
	"errors"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"gorm.io/gorm"
)

type LotteryGormRepository struct {
	db *gorm.DB
}

func NewLotteryGormRepository(db *gorm.DB) *LotteryGormRepository {
	return &LotteryGormRepository{db: db}
}

func (r *LotteryGormRepository) FindActivityByID(ctx context.Context, activityID int64) (model.Activity, error) {
	var a model.Activity
	err := r.db.WithContext(ctx).Preload("Prizes").Where("id = ?", activityID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Activity{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Activity{}, err
	}
	return a, nil
}

func (r *LotteryGormRepository) CreateActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	//Prizesも一緒にINSERTされる
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.Activity{}, err
	}
	return a, nil
}

func (r *LotteryGormRepository) UpdateActivity(ctx context.Context, a model.Activity) error {
	res := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", a.ID).
		Select("title", "start_at", "end_at", "is_active").
		Updates(a)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *LotteryGormRepository) CreateTickets(ctx context.Context, tickets []model.LotteryTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tickets).Error
}

func (r *LotteryGormRepository) FindTicketBySecret(ctx context.Context, secret string) (model.LotteryTicket, error) {
	var t model.LotteryTicket
	err := r.db.WithContext(ctx).Where("secret = ?", secret).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LotteryTicket{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LotteryTicket{}, err
	}
	return t, nil
}

// secretは1回だけ。条件付きUPDATE1文で二重使用を防ぐ
func (r *LotteryGormRepository) UseTicketIfUnused(ctx context.Context, secret string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LotteryTicket{}).
		Where("secret = ? AND used = ?", secret, false).
		Update("used", true)

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 景品在庫が残っているときだけ1つ減らす
func (r *LotteryGormRepository) DecreasePrizeStockIfEnough(ctx context.Context, prizeID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Prize{}).
		Where("id = ? AND stock >= ?", prizeID, 1).
		Update("stock", gorm.Expr("stock - ?", 1))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *LotteryGormRepository) SetTicketResult(ctx context.Context, ticketID int64, userID int64, prizeID int64, drawnAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.LotteryTicket{}).
		Where("id = ?", ticketID).
		Updates(map[string]interface{}{
			"user_id":  userID,
			"prize_id": prizeID,
			"drawn_at": drawnAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
