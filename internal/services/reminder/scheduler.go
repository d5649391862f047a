// Package reminder содержит планировщик и отправителя напоминаний
// об истекающих пробных периодах.
package reminder

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/streadway/amqp"

	"github.com/freefromtrial/backend/internal/lib/rabbitmq"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/models"
	rmq "github.com/freefromtrial/backend/internal/rabbitmq"
)

// TrialFinder описывает интерфейс поиска подписок, истекающих через
// заданное число дней.
type TrialFinder interface {
	FindTrialsExpiringIn(ctx context.Context, days int) ([]models.TrialReminder, error)
}

// SchedulerService периодически сканирует хранилище и публикует
// напоминания в очередь.
type SchedulerService struct {
	repo         TrialFinder
	log          *slog.Logger
	scanInterval time.Duration
	alertDays    []int
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// alertDays — строка вида "5,3,1": за сколько дней до окончания
// пробного периода отправлять напоминание.
func NewSchedulerService(repo TrialFinder, log *slog.Logger, scanInterval time.Duration, alertDays string) *SchedulerService {
	return &SchedulerService{
		repo:         repo,
		log:          log,
		scanInterval: scanInterval,
		alertDays:    ParseAlertDays(alertDays),
	}
}

// ParseAlertDays разбирает список дней из конфигурации. Пустые и
// нечисловые элементы пропускаются; пустой итог заменяется на {5, 3, 1}.
func ParseAlertDays(raw string) []int {
	var days []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			continue
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		days = []int{5, 3, 1}
	}
	return days
}

// FindExpiringTrials запускает цикл сканирования. Для каждого окна из
// alertDays публикуется отдельное напоминание. Выход — по отмене контекста.
func (s *SchedulerService) FindExpiringTrials(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce(ctx, channel)
		}
	}
}

func (s *SchedulerService) scanOnce(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting scan for expiring trials", slog.Any("alert_days", s.alertDays))
	for _, days := range s.alertDays {
		reminders, err := s.repo.FindTrialsExpiringIn(ctx, days)
		if err != nil {
			s.log.Error("failed to find expiring trials",
				slog.Int("days", days), sl.Err(err))
			continue
		}
		for _, reminder := range reminders {
			reminder.DaysLeft = days
			err = rabbitmq.PublishMessage(channel, rmq.Exchange, "upcoming", reminder)
			if err != nil {
				s.log.Error("failed to publish reminder", sl.Err(err))
			}
		}
		s.log.Info("published reminders",
			slog.Int("days", days), slog.Int("count", len(reminders)))
	}
}
