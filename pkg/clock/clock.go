package clock

import (
	"sync"
	"time"
)

// Clock источник текущего времени. Внедряется во все места, где нужно "сейчас",
// чтобы в тестах время можно было зафиксировать.
type Clock interface {
	Now() time.Time
}

// Real реальное время
type Real struct{}

// Now возвращает текущее время
func (Real) Now() time.Time {
	return time.Now()
}

// Local реальное время в заданной временной зоне
type Local struct {
	Loc *time.Location
}

// Now возвращает текущее время в зоне Loc
func (l Local) Now() time.Time {
	if l.Loc == nil {
		return time.Now()
	}
	return time.Now().In(l.Loc)
}

// Mock управляемые часы для тестов
type Mock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMock создает часы, остановленные на указанном моменте
func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

// Now возвращает зафиксированное время
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set переставляет часы
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance сдвигает часы вперед и возвращает новое время
func (m *Mock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
	return m.current
}
