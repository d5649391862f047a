// Package dashboard собирает данные для панели пользователя: снимок
// коллекции подписок и производные представления (счётчики, сумма экономии,
// списки срочных и ближайших подписок, фильтрация).
//
// Снимок после каждой загрузки заменяется целиком. При неудачной загрузке
// отдаётся последний успешный снимок, а если его нет — пустой снимок,
// явно помеченный как недоступный: это не то же самое, что пустая коллекция.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/freefromtrial/backend/internal/aggregate"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/models"
)

// TrialLister описывает источник списка подписок пользователя.
type TrialLister interface {
	List(ctx context.Context, userUID string) ([]models.Trial, error)
}

// Service реализует сборку данных панели.
type Service struct {
	trials TrialLister
	holder *aggregate.Holder
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(trials TrialLister, log *slog.Logger) *Service {
	return &Service{
		trials: trials,
		holder: aggregate.NewHolder(),
		log:    log,
	}
}

// Summary — полезная нагрузка панели: все четыре производных вычисляются
// из одного снимка, независимо друг от друга.
type Summary struct {
	Counts       aggregate.Counts   `json:"counts"`
	TotalSavings string             `json:"totalSavings"`
	UrgentList   []models.TrialView `json:"urgentList"`
	UpcomingList []models.TrialView `json:"upcomingList"`
	Available    bool               `json:"available"`
	FetchedAt    time.Time          `json:"fetchedAt"`
}

// Snapshot перечитывает коллекцию пользователя целиком и заменяет снимок.
// При ошибке загрузки предыдущий снимок остаётся нетронутым и возвращается
// вместе с ошибкой.
func (s *Service) Snapshot(ctx context.Context, userUID string) (aggregate.Snapshot, error) {
	trials, err := s.trials.List(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to refresh trials snapshot",
			slog.String("user_uid", userUID), sl.Err(err))
		if prev, ok := s.holder.Get(userUID); ok {
			return prev, err
		}
		snap := aggregate.Unavailable()
		s.holder.Replace(userUID, snap)
		return snap, err
	}

	snap := aggregate.NewSnapshot(trials, time.Now())
	s.holder.Replace(userUID, snap)
	return snap, nil
}

// Forget удаляет снимок пользователя, например при выходе из системы.
func (s *Service) Forget(userUID string) {
	s.holder.Drop(userUID)
}

// BuildSummary собирает данные панели из снимка на момент now.
func BuildSummary(snap aggregate.Snapshot, now time.Time) Summary {
	trials := snap.Trials()
	return Summary{
		Counts:       aggregate.CountByStatus(trials, now),
		TotalSavings: aggregate.TotalSavings(trials, now).StringFixed(2),
		UrgentList:   aggregate.Views(aggregate.UrgentList(trials, now), now),
		UpcomingList: aggregate.Views(aggregate.UpcomingList(trials, now), now),
		Available:    snap.Available(),
		FetchedAt:    snap.FetchedAt(),
	}
}

// Summary перечитывает снимок и собирает данные панели.
func (s *Service) Summary(ctx context.Context, userUID string, now time.Time) (Summary, error) {
	snap, err := s.Snapshot(ctx, userUID)
	return BuildSummary(snap, now), err
}

// Filtered возвращает отфильтрованный список подписок пользователя
// в виде представлений для рендера. Второй результат — доступность снимка.
func (s *Service) Filtered(ctx context.Context, userUID, statusFilter, search string, now time.Time) ([]models.TrialView, bool, error) {
	snap, err := s.Snapshot(ctx, userUID)
	filtered := aggregate.FilteredList(snap.Trials(), now, statusFilter, search)
	return aggregate.Views(filtered, now), snap.Available(), err
}
