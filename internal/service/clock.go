package service

import (
	"sync"
	"time"

	"dailymind/internal/model"
)

// Clock задает текущее время и часовой пояс, в котором считается "сегодня".
// Часовой пояс можно сменить во время работы через настройки.
type Clock struct {
	mu  sync.RWMutex
	loc *time.Location
	now func() time.Time
}

// NewClock создает часы с заданным часовым поясом
func NewClock(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// Now возвращает текущее время в часовом поясе расписания
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().In(c.loc)
}

// Today возвращает текущий календарный день
func (c *Clock) Today() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.Day(c.now(), c.loc)
}

// Location возвращает часовой пояс расписания
func (c *Clock) Location() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loc
}

// SetLocation меняет часовой пояс расписания
func (c *Clock) SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	c.mu.Lock()
	c.loc = loc
	c.mu.Unlock()
}
