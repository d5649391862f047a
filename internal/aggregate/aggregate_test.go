package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
)

var testNow = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func price(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func trial(name string, lifecycle trialstatus.Lifecycle, daysAhead int, renewalPrice *decimal.Decimal) models.Trial {
	return models.Trial{
		ID:           name,
		ServiceName:  name,
		ExpiryDate:   testNow.AddDate(0, 0, daysAhead),
		RenewalPrice: renewalPrice,
		Lifecycle:    lifecycle,
		Category:     "Subscription",
		Icon:         "📱",
	}
}

func TestCountByStatus(t *testing.T) {
	trials := []models.Trial{
		trial("urgent-1", trialstatus.LifecycleDetected, 2, nil),
		trial("warning-1", trialstatus.LifecycleDetected, 6, nil),
		trial("safe-1", trialstatus.LifecycleConfirmed, 30, nil),
		trial("cancelled-1", trialstatus.LifecycleCanceled, 30, nil),
		trial("overdue-1", trialstatus.LifecycleDetected, -2, nil),
	}

	counts := CountByStatus(trials, testNow)

	// Просроченная считается отменённой; активные — все, кроме отменённых.
	assert.Equal(t, 3, counts.Active)
	assert.Equal(t, 1, counts.Urgent)
	assert.Equal(t, 2, counts.Cancelled)
}

func TestCountByStatusEmpty(t *testing.T) {
	counts := CountByStatus(nil, testNow)
	assert.Equal(t, Counts{}, counts)
}

func TestTotalSavings(t *testing.T) {
	trials := []models.Trial{
		trial("cancelled-priced", trialstatus.LifecycleCanceled, 10, price(9.99)),
		trial("cancelled-free", trialstatus.LifecycleCanceled, 10, nil),
		trial("active-priced", trialstatus.LifecycleConfirmed, 30, price(100)),
	}

	// Считаются только отменённые, отсутствующая цена — ноль.
	assert.Equal(t, "9.99", TotalSavings(trials, testNow).StringFixed(2))
}

func TestTotalSavingsAvoidsFloatDrift(t *testing.T) {
	trials := []models.Trial{
		trial("a", trialstatus.LifecycleCanceled, 10, price(0.1)),
		trial("b", trialstatus.LifecycleCanceled, 10, price(0.2)),
	}
	assert.Equal(t, "0.30", TotalSavings(trials, testNow).StringFixed(2))
}

func TestUrgentList(t *testing.T) {
	trials := []models.Trial{
		trial("safe", trialstatus.LifecycleDetected, 30, nil),
		trial("warning", trialstatus.LifecycleDetected, 5, nil),
		trial("urgent", trialstatus.LifecycleDetected, 1, nil),
		trial("cancelled", trialstatus.LifecycleCanceled, 1, nil),
	}

	urgent := UrgentList(trials, testNow)

	// Входной порядок сохраняется, warning тоже входит в список.
	require.Len(t, urgent, 2)
	assert.Equal(t, "warning", urgent[0].ServiceName)
	assert.Equal(t, "urgent", urgent[1].ServiceName)
}

func TestUpcomingList(t *testing.T) {
	trials := []models.Trial{
		trial("g", trialstatus.LifecycleDetected, 40, nil),
		trial("a", trialstatus.LifecycleDetected, 10, nil),
		trial("cancelled", trialstatus.LifecycleCanceled, 1, nil),
		trial("b", trialstatus.LifecycleDetected, 3, nil),
		trial("c", trialstatus.LifecycleDetected, 20, nil),
		trial("d", trialstatus.LifecycleConfirmed, 15, nil),
		trial("e", trialstatus.LifecycleDetected, 25, nil),
	}

	upcoming := UpcomingList(trials, testNow)

	// Не более пяти, по возрастанию оставшихся дней, отменённые исключены.
	require.Len(t, upcoming, UpcomingLimit)
	got := make([]string, 0, len(upcoming))
	for _, u := range upcoming {
		got = append(got, u.ServiceName)
	}
	assert.Equal(t, []string{"b", "a", "d", "c", "e"}, got)
}

func TestUpcomingListStableOnTies(t *testing.T) {
	trials := []models.Trial{
		trial("first", trialstatus.LifecycleDetected, 10, nil),
		trial("second", trialstatus.LifecycleDetected, 10, nil),
	}

	upcoming := UpcomingList(trials, testNow)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "first", upcoming[0].ServiceName)
	assert.Equal(t, "second", upcoming[1].ServiceName)
}

func TestUpcomingListDoesNotMutateInput(t *testing.T) {
	trials := []models.Trial{
		trial("z", trialstatus.LifecycleDetected, 30, nil),
		trial("a", trialstatus.LifecycleDetected, 1, nil),
	}

	_ = UpcomingList(trials, testNow)

	assert.Equal(t, "z", trials[0].ServiceName)
	assert.Equal(t, "a", trials[1].ServiceName)
}

func TestFilteredList(t *testing.T) {
	trials := []models.Trial{
		trial("Netflix", trialstatus.LifecycleDetected, 2, nil),
		trial("Spotify", trialstatus.LifecycleDetected, 30, nil),
		trial("Disney+", trialstatus.LifecycleCanceled, 30, nil),
	}
	trials[0].Category = "Entertainment"
	trials[1].Category = "Music"
	trials[2].Category = "Entertainment"

	tests := []struct {
		name         string
		statusFilter string
		search       string
		want         []string
	}{
		{"no filters returns all", "", "", []string{"Netflix", "Spotify", "Disney+"}},
		{"all keyword returns all", FilterAll, "", []string{"Netflix", "Spotify", "Disney+"}},
		{"status filter", "cancelled", "", []string{"Disney+"}},
		{"search by name", "", "netflix", []string{"Netflix"}},
		{"search by category", "", "entertainment", []string{"Netflix", "Disney+"}},
		{"search with surrounding spaces", "", "  spotify  ", []string{"Spotify"}},
		{"status and search combined", "urgent", "entertainment", []string{"Netflix"}},
		{"no matches is empty, not error", "safe", "netflix", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilteredList(trials, testNow, tt.statusFilter, tt.search)
			got := make([]string, 0, len(result))
			for _, r := range result {
				got = append(got, r.ServiceName)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$15.49/month", FormatPrice(price(15.49)))
	assert.Equal(t, "$5.00/month", FormatPrice(price(5)))
	assert.Equal(t, "$0.00/month", FormatPrice(price(0)))
	assert.Equal(t, "Unknown", FormatPrice(nil))
}

func TestView(t *testing.T) {
	tr := trial("Netflix", trialstatus.LifecycleDetected, 2, price(15.49))
	tr.Icon = "🎬"
	tr.Category = "Entertainment"
	cancel := "https://netflix.com/cancel"
	tr.CancelURL = &cancel

	view := View(tr, testNow)

	assert.Equal(t, "Netflix", view.Name)
	assert.Equal(t, "🎬", view.Icon)
	assert.Equal(t, "urgent", view.Status)
	assert.Equal(t, "Expires soon!", view.StatusLabel)
	assert.Equal(t, 2, view.DaysLeft)
	assert.Equal(t, "Jun 12, 2025", view.ExpiryDate)
	assert.Equal(t, "$15.49/month", view.Price)
	require.NotNil(t, view.CancelURL)
	assert.Equal(t, cancel, *view.CancelURL)
}

func TestViewsIdempotent(t *testing.T) {
	trials := []models.Trial{
		trial("Netflix", trialstatus.LifecycleDetected, 2, price(15.49)),
		trial("Spotify", trialstatus.LifecycleCanceled, 10, nil),
	}

	first := Views(trials, testNow)
	second := Views(trials, testNow)

	assert.Equal(t, first, second)
}
