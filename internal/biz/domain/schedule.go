package domain

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultScheduleName is used when a stored schedule has no name
const DefaultScheduleName = "Schedule"

// Schedule is a mute rule: a daily time window, the weekdays it starts on and the groups it mutes
type Schedule struct {
	ID          string
	Name        string
	StartHour   int      `validate:"min=0,max=23"`
	StartMinute int      `validate:"min=0,max=59"`
	EndHour     int      `validate:"min=0,max=23"`
	EndMinute   int      `validate:"min=0,max=59"`
	Days        []int    `validate:"min=1,dive,min=1,max=7"` // ISO weekdays, 1=Monday..7=Sunday
	Groups      []string `validate:"min=1,dive,required"`
	Enabled     bool
}

// Instant is a wall-clock reading used for schedule evaluation
type Instant struct {
	Hour    int
	Minute  int
	Weekday int // ISO weekday, 1=Monday..7=Sunday
}

var (
	scheduleValidator     *validator.Validate
	scheduleValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	scheduleValidatorOnce.Do(func() {
		scheduleValidator = validator.New()
	})
	return scheduleValidator
}

// Validate reports whether the schedule can be evaluated.
// Records failing validation are dropped by the store, never partially applied.
func (s *Schedule) Validate() error {
	if err := getValidator().Struct(s); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.Name, err)
	}
	return nil
}

// InstantOf converts a time to an Instant in the time's own location
func InstantOf(t time.Time) Instant {
	return Instant{
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Weekday: ISOWeekday(t.Weekday()),
	}
}

// ISOWeekday maps time.Weekday (Sunday=0) to 1=Monday..7=Sunday
func ISOWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// PreviousDay returns the ISO weekday before day, wrapping Monday to Sunday
func PreviousDay(day int) int {
	if day == 1 {
		return 7
	}
	return day - 1
}

// StartMinutes returns the window start as minutes since midnight
func (s *Schedule) StartMinutes() int {
	return s.StartHour*60 + s.StartMinute
}

// EndMinutes returns the window end as minutes since midnight
func (s *Schedule) EndMinutes() int {
	return s.EndHour*60 + s.EndMinute
}

// IsOvernight reports whether the window crosses midnight
func (s *Schedule) IsOvernight() bool {
	return s.StartMinutes() > s.EndMinutes()
}

// HasDay checks if the schedule starts on the given ISO weekday
func (s *Schedule) HasDay(day int) bool {
	return slices.Contains(s.Days, day)
}

// IsActiveAt checks if the schedule window covers the instant.
//
// The end of the window is exclusive, so a window with start == end is never active.
// For an overnight window the part after midnight belongs to the previous day's entry.
func (s *Schedule) IsActiveAt(at Instant) bool {
	now := at.Hour*60 + at.Minute
	start := s.StartMinutes()
	end := s.EndMinutes()

	if !s.IsOvernight() {
		return s.HasDay(at.Weekday) && now >= start && now < end
	}

	if now >= start {
		return s.HasDay(at.Weekday)
	}
	return now < end && s.HasDay(PreviousDay(at.Weekday))
}

// FormatWindow formats the window as HH:MM-HH:MM
func (s *Schedule) FormatWindow() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}
