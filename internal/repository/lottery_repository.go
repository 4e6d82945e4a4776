package repository

import (
	"context"
	"time"

	"mall/internal/domain/model"
)

// 抽選（キャンペーン・景品・抽選券）の保存・取得
type LotteryRepository interface {
	//Prizesをpreloadして1件取得
	FindActivityByID(ctx context.Context, activityID int64) (model.Activity, error)

	CreateActivity(ctx context.Context, a model.Activity) (model.Activity, error)
	UpdateActivity(ctx context.Context, a model.Activity) error

	//抽選券の一括発行
	CreateTickets(ctx context.Context, tickets []model.LotteryTicket) error

	FindTicketBySecret(ctx context.Context, secret string) (model.LotteryTicket, error)

	//未使用のときだけ使用済みにする。既に使用済みならfalse
	UseTicketIfUnused(ctx context.Context, secret string) (bool, error)

	//景品在庫が残っているときだけ1つ減らす
	DecreasePrizeStockIfEnough(ctx context.Context, prizeID int64) (bool, error)

	//抽選結果を抽選券に書き込む
	SetTicketResult(ctx context.Context, ticketID int64, userID int64, prizeID int64, drawnAt time.Time) error
}
