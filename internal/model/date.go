package model

import "time"

// DateLayout формат календарной даты в API
const DateLayout = "2006-01-02"

// Day возвращает календарный день момента t в часовом поясе loc.
// День хранится как полночь UTC, чтобы совпадать с колонкой типа date.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay разбирает дату в формате YYYY-MM-DD
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// SameDay сравнивает два дня без учета времени
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
