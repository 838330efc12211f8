package analytics

import (
	"sort"
	"time"

	"paydash.app/cloud/models"
)

// DayBucket is one day's worth of payments.
type DayBucket struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Revenue int64  `json:"revenue"`
	Volume  int    `json:"volume"`
}

// CurrencyTotal is the per-currency slice of the totals.
type CurrencyTotal struct {
	Currency string `json:"currency"`
	Revenue  int64  `json:"revenue"`
	Count    int    `json:"count"`
}

// Summary holds everything the analytics page renders. The headline
// figures (TotalRevenue, AverageTransaction, best day) are in the
// dominant currency; Currencies carries the full breakdown.
type Summary struct {
	WindowDays         int             `json:"window_days"`
	Currency           string          `json:"currency"`
	TotalRevenue       int64           `json:"total_revenue"`
	TotalTransactions  int             `json:"total_transactions"`
	AverageTransaction int64           `json:"average_transaction"`
	Daily              []DayBucket     `json:"daily"`
	BusiestDay         string          `json:"busiest_day,omitempty"`
	BusiestDayVolume   int             `json:"busiest_day_volume,omitempty"`
	BestDay            string          `json:"best_day,omitempty"`
	BestDayRevenue     int64           `json:"best_day_revenue,omitempty"`
	AvgPerDay          float64         `json:"avg_transactions_per_day"`
	Currencies         []CurrencyTotal `json:"currencies,omitempty"`
}

func (s Summary) Empty() bool {
	return s.TotalTransactions == 0
}

// Summarize aggregates payments into daily revenue and volume figures.
// Cross-currency amounts are never added together: the headline numbers
// cover the dominant currency (most transactions) and the rest stays in
// the per-currency breakdown.
func Summarize(payments []models.Payment, windowDays int) Summary {
	summary := Summary{WindowDays: windowDays}
	if len(payments) == 0 {
		return summary
	}

	byCurrency := make(map[string]*CurrencyTotal)
	for _, p := range payments {
		ct := byCurrency[p.Currency]
		if ct == nil {
			ct = &CurrencyTotal{Currency: p.Currency}
			byCurrency[p.Currency] = ct
		}
		ct.Revenue += p.Amount
		ct.Count++
	}

	dominant := ""
	for currency, ct := range byCurrency {
		if dominant == "" || ct.Count > byCurrency[dominant].Count ||
			(ct.Count == byCurrency[dominant].Count && currency < dominant) {
			dominant = currency
		}
	}

	days := make(map[string]*DayBucket)
	for _, p := range payments {
		if p.Currency != dominant {
			continue
		}
		date := p.CreatedAt.UTC().Format("2006-01-02")
		bucket := days[date]
		if bucket == nil {
			bucket = &DayBucket{Date: date}
			days[date] = bucket
		}
		bucket.Revenue += p.Amount
		bucket.Volume++
	}

	for _, bucket := range days {
		summary.Daily = append(summary.Daily, *bucket)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date < summary.Daily[j].Date
	})

	summary.Currency = dominant
	summary.TotalRevenue = byCurrency[dominant].Revenue
	summary.TotalTransactions = len(payments)
	if n := byCurrency[dominant].Count; n > 0 {
		summary.AverageTransaction = byCurrency[dominant].Revenue / int64(n)
	}

	for _, bucket := range summary.Daily {
		if bucket.Volume > summary.BusiestDayVolume {
			summary.BusiestDay = bucket.Date
			summary.BusiestDayVolume = bucket.Volume
		}
		if bucket.Revenue > summary.BestDayRevenue {
			summary.BestDay = bucket.Date
			summary.BestDayRevenue = bucket.Revenue
		}
	}

	if windowDays > 0 {
		summary.AvgPerDay = float64(len(payments)) / float64(windowDays)
	}

	for _, ct := range byCurrency {
		summary.Currencies = append(summary.Currencies, *ct)
	}
	sort.Slice(summary.Currencies, func(i, j int) bool {
		return summary.Currencies[i].Currency < summary.Currencies[j].Currency
	})

	return summary
}

// Window returns the start of the reporting window: the UTC instant
// windowDays before now.
func Window(now time.Time, windowDays int) time.Time {
	return now.UTC().AddDate(0, 0, -windowDays)
}
