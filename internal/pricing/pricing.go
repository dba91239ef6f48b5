package pricing

import (
	"fmt"
	"time"

	"carrental-backend/internal/domain"
)

const (
	DateLayout    = "2006-01-02"
	daysPerWeek   = 7
	daysPerMonth  = 30
	hoursInOneDay = 24
)

// Quote is the price breakdown of one rental period.
type Quote struct {
	DurationDays     int   `json:"duration_days"`
	Months           int   `json:"months"`
	Weeks            int   `json:"weeks"`
	Days             int   `json:"days"`
	MonthsCostCents  int64 `json:"months_cost_cents"`
	WeeksCostCents   int64 `json:"weeks_cost_cents"`
	DaysCostCents    int64 `json:"days_cost_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	TotalPriceCents  int64 `json:"total_price_cents"`
	IncludedKm       int64 `json:"included_km"`
}

// ParseDate parses a yyyy-mm-dd calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return t, nil
}

// DurationDays returns the number of started days between start and end, or
// zero when end is not after start.
func DurationDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	hours := end.Sub(start).Hours()
	days := int(hours / hoursInOneDay)
	if float64(days*hoursInOneDay) < hours {
		days++
	}
	return days
}

// Calculate prices the period [start, end) against rates. The duration is
// split greedily into 30-day months, then 7-day weeks, then single days, each
// charged at its own tier. deliveryFeeCents is added when delivery is on, even
// for an empty period.
func Calculate(start, end time.Time, rates domain.RateTable, delivery bool, deliveryFeeCents int64) Quote {
	q := Quote{DurationDays: DurationDays(start, end)}

	remaining := q.DurationDays
	q.Months = remaining / daysPerMonth
	remaining %= daysPerMonth
	q.Weeks = remaining / daysPerWeek
	q.Days = remaining % daysPerWeek

	q.MonthsCostCents = int64(q.Months) * rates.Month.PriceCents
	q.WeeksCostCents = int64(q.Weeks) * rates.Week.PriceCents
	q.DaysCostCents = int64(q.Days) * rates.Day.PriceCents
	q.IncludedKm = int64(q.Months)*rates.Month.IncludedKm +
		int64(q.Weeks)*rates.Week.IncludedKm +
		int64(q.Days)*rates.Day.IncludedKm

	if delivery {
		q.DeliveryFeeCents = deliveryFeeCents
	}
	q.TotalPriceCents = q.MonthsCostCents + q.WeeksCostCents + q.DaysCostCents + q.DeliveryFeeCents
	return q
}

// CalculateDates is Calculate over yyyy-mm-dd strings. An empty start or end
// yields the delivery-only quote.
func CalculateDates(startDate, endDate string, rates domain.RateTable, delivery bool, deliveryFeeCents int64) (Quote, error) {
	if startDate == "" || endDate == "" {
		return Calculate(time.Time{}, time.Time{}, rates, delivery, deliveryFeeCents), nil
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return Quote{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return Quote{}, fmt.Errorf("invalid end date: %w", err)
	}
	return Calculate(start, end, rates, delivery, deliveryFeeCents), nil
}

// FormulaRange returns the date range a preset formula selects, starting on today.
func FormulaRange(formula domain.PricingFormula, today time.Time) (string, string, error) {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var end time.Time
	switch formula {
	case domain.FormulaDay:
		end = start.AddDate(0, 0, 1)
	case domain.FormulaWeek:
		end = start.AddDate(0, 0, daysPerWeek)
	case domain.FormulaMonth:
		end = start.AddDate(0, 1, 0)
	default:
		return "", "", fmt.Errorf("unknown pricing formula %q", formula)
	}
	return start.Format(DateLayout), end.Format(DateLayout), nil
}
