package service

import (
	"math"
	"sort"
	"time"
)

// uniqueDays приводит даты к календарным дням и убирает повторы. Результат отсортирован по убыванию.
func uniqueDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))

	for _, d := range dates {
		y, m, dd := d.Date()
		day := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})
	return days
}

// CurrentStreak считает серию подряд идущих дней с выполненными заданиями.
// Серия должна заканчиваться сегодня или вчера, иначе она равна нулю.
func CurrentStreak(dates []time.Time, today time.Time) int {
	days := uniqueDays(dates)
	if len(days) == 0 {
		return 0
	}

	y, m, d := today.Date()
	todayDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	yesterday := todayDay.AddDate(0, 0, -1)

	if !days[0].Equal(todayDay) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak возвращает самую длинную серию за всю историю
func LongestStreak(dates []time.Time) int {
	days := uniqueDays(dates)
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// CompletionRate возвращает процент выполнения, округленный до сотых
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}
