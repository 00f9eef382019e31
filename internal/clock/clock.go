package clock

import (
	"time"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

// systemClock выдаёт текущую календарную дату в заданном часовом поясе.
type systemClock struct {
	loc *time.Location
}

// System возвращает часы, усекающие текущее время до календарной даты
// в поясе loc. При nil используется локальный пояс сервера.
func System(loc *time.Location) domain.Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Today() time.Time {
	now := time.Now().In(c.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}

// fixedClock всегда возвращает одну и ту же дату.
type fixedClock struct {
	day time.Time
}

// Fixed возвращает часы с неизменной датой "сегодня" для тестов.
func Fixed(day time.Time) domain.Clock {
	return fixedClock{
		day: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
	}
}

func (c fixedClock) Today() time.Time {
	return c.day
}

var (
	_ domain.Clock = systemClock{}
	_ domain.Clock = fixedClock{}
)
