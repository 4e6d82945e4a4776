package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/google/uuid"
)

// 抽選キャンペーン。券のsecretは1回だけ使える
type LotteryUsecase struct {
	tx          repo.TransactionManager
	lotteryRepo repo.LotteryRepository

	//抽選の乱数。テストで差し替える
	randInt63n func(n int64) int64
}

func NewLotteryUsecase(tx repo.TransactionManager, lotteryRepo repo.LotteryRepository) *LotteryUsecase {
	return &LotteryUsecase{
		tx:          tx,
		lotteryRepo: lotteryRepo,
		randInt63n:  rand.Int63n,
	}
}

type PrizeInput struct {
	Name   string `json:"name"`
	Image  string `json:"image"`
	Weight int64  `json:"weight"`
	Stock  int64  `json:"stock"`
}

type CreateActivityInput struct {
	Title   string       `json:"title"`
	StartAt time.Time    `json:"start_at"`
	EndAt   time.Time    `json:"end_at"`
	Prizes  []PrizeInput `json:"prizes"`
}

func (u *LotteryUsecase) CreateActivity(ctx context.Context, in CreateActivityInput) (model.Activity, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Activity{}, NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !in.EndAt.After(in.StartAt) {
		return model.Activity{}, NewHTTPError(http.StatusBadRequest, "end_at must be after start_at")
	}
	if len(in.Prizes) == 0 {
		return model.Activity{}, NewHTTPError(http.StatusBadRequest, "at least one prize required")
	}
	for _, p := range in.Prizes {
		if strings.TrimSpace(p.Name) == "" {
			return model.Activity{}, NewHTTPError(http.StatusBadRequest, "prize name required")
		}
		if p.Weight < 1 {
			return model.Activity{}, NewHTTPError(http.StatusBadRequest, "prize weight must be >= 1")
		}
		if p.Stock < 0 {
			return model.Activity{}, NewHTTPError(http.StatusBadRequest, "prize stock must be >= 0")
		}
	}

	prizes := make([]model.Prize, 0, len(in.Prizes))
	for _, p := range in.Prizes {
		prizes = append(prizes, model.Prize{
			Name:   strings.TrimSpace(p.Name),
			Image:  p.Image,
			Weight: p.Weight,
			Stock:  p.Stock,
		})
	}

	a, err := u.lotteryRepo.CreateActivity(ctx, model.Activity{
		Title:    strings.TrimSpace(in.Title),
		StartAt:  in.StartAt,
		EndAt:    in.EndAt,
		IsActive: true,
		Prizes:   prizes,
	})
	if err != nil {
		return model.Activity{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return a, nil
}

type UpdateActivityInput struct {
	Title    string    `json:"title"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	IsActive bool      `json:"is_active"`
}

func (u *LotteryUsecase) UpdateActivity(ctx context.Context, activityID int64, in UpdateActivityInput) error {
	if activityID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid activity id")
	}
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !in.EndAt.After(in.StartAt) {
		return NewHTTPError(http.StatusBadRequest, "end_at must be after start_at")
	}

	err := u.lotteryRepo.UpdateActivity(ctx, model.Activity{
		ID:       activityID,
		Title:    strings.TrimSpace(in.Title),
		StartAt:  in.StartAt,
		EndAt:    in.EndAt,
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

func (u *LotteryUsecase) GetActivity(ctx context.Context, activityID int64) (model.Activity, error) {
	if activityID <= 0 {
		return model.Activity{}, NewHTTPError(http.StatusBadRequest, "invalid activity id")
	}

	a, err := u.lotteryRepo.FindActivityByID(ctx, activityID)
	if err == repo.ErrNotFound {
		return model.Activity{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Activity{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return a, nil
}

// 抽選券の一括発行。secretはuuidなので推測できない
func (u *LotteryUsecase) IssueTickets(ctx context.Context, activityID int64, count int) ([]string, error) {
	if activityID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid activity id")
	}
	if count < 1 || count > 1000 {
		return nil, NewHTTPError(http.StatusBadRequest, "count must be 1..1000")
	}

	if _, err := u.lotteryRepo.FindActivityByID(ctx, activityID); err != nil {
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	secrets := make([]string, 0, count)
	tickets := make([]model.LotteryTicket, 0, count)
	for i := 0; i < count; i++ {
		s := uuid.NewString()
		secrets = append(secrets, s)
		tickets = append(tickets, model.LotteryTicket{
			ActivityID: activityID,
			Secret:     s,
		})
	}

	if err := u.lotteryRepo.CreateTickets(ctx, tickets); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return secrets, nil
}

type DrawResult struct {
	Prize model.Prize `json:"prize"`
}

// 抽選を引く。券の使用・景品在庫の減算・結果書き込みを同一Txで行う
func (u *LotteryUsecase) Draw(ctx context.Context, userID int64, secret string) (DrawResult, error) {
	if userID <= 0 {
		return DrawResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(secret) == "" {
		return DrawResult{}, NewHTTPError(http.StatusBadRequest, "secret required")
	}

	var result DrawResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Lottery().FindTicketBySecret(ctx, secret)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "ticket not found")
		}
		if err != nil {
			return err
		}

		a, err := r.Lottery().FindActivityByID(ctx, t.ActivityID)
		if err != nil {
			return err
		}

		now := time.Now()
		if !a.IsActive || now.Before(a.StartAt) || now.After(a.EndAt) {
			return NewHTTPError(http.StatusBadRequest, "activity is not open")
		}

		//条件付きUPDATEで二重使用を防ぐ
		ok, err := r.Lottery().UseTicketIfUnused(ctx, secret)
		if err != nil {
			return err
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "ticket already used")
		}

		prize, err := u.pickPrize(ctx, r, a.Prizes)
		if err != nil {
			return err
		}

		if err := r.Lottery().SetTicketResult(ctx, t.ID, userID, prize.ID, now); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionDrawPrize,
			ResourceType: model.AuditResourceActivity,
			ResourceID:   a.ID,
			AfterJSON:    fmt.Sprintf(`{"ticket_id":%d,"prize_id":%d}`, t.ID, prize.ID),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		result.Prize = prize
		return nil
	})
	if err != nil {
		return DrawResult{}, err
	}
	return result, nil
}

// 在庫のある景品から重み付きで1つ選ぶ。
// 選んだ景品の在庫減算に負けたら（同時抽選）その景品を除いて引き直す
func (u *LotteryUsecase) pickPrize(ctx context.Context, r repo.TxRepos, prizes []model.Prize) (model.Prize, error) {
	candidates := make([]model.Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.Stock > 0 {
			candidates = append(candidates, p)
		}
	}

	for len(candidates) > 0 {
		var totalWeight int64
		for _, p := range candidates {
			totalWeight += p.Weight
		}

		n := u.randInt63n(totalWeight)
		idx := 0
		for i, p := range candidates {
			if n < p.Weight {
				idx = i
				break
			}
			n -= p.Weight
		}

		ok, err := r.Lottery().DecreasePrizeStockIfEnough(ctx, candidates[idx].ID)
		if err != nil {
			return model.Prize{}, err
		}
		if ok {
			return candidates[idx], nil
		}
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}

	return model.Prize{}, NewHTTPError(http.StatusConflict, "no prizes left")
}
