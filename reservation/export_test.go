package reservation

import "time"

func WithClock(m Manager, now func() time.Time) Manager {
	m.now = now
	return m
}
