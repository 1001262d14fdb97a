package studio

import (
	"strconv"
	"strings"
	"time"
)

type TrainingType string

const (
	HipHop       TrainingType = "HIP-HOP"
	KPop         TrainingType = "K-POP"
	Heels        TrainingType = "HEELS"
	Choreography TrainingType = "CHOREOGRAPHY"
)

type SessionMode string

const (
	ModeGroup    SessionMode = "group"
	ModePersonal SessionMode = "personal"
)

func (m SessionMode) Valid() bool {
	return m == ModeGroup || m == ModePersonal
}

// Label is the human readable format name used in lead notes.
func (m SessionMode) Label() string {
	if m == ModePersonal {
		return "Персональне"
	}
	return "Група"
}

type Trainer struct {
	ID     string         `yaml:"id" json:"id"`
	Name   string         `yaml:"name" json:"name"`
	Styles []TrainingType `yaml:"styles" json:"styles"`
}

type RecurringSlot struct {
	Weekday         time.Weekday `json:"weekday"`
	Time            string       `json:"time"`
	Type            TrainingType `json:"type"`
	TrainerID       string       `json:"trainer_id"`
	DurationMinutes int          `json:"duration_minutes"`
	Mode            SessionMode  `json:"mode"`
}

// ValidTime reports whether s is a 24h "HH:MM" clock time.
func ValidTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// ParseWeekday accepts "mon", "monday", 0..6 (Sunday = 0) and 7 for Sunday.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n >= 0 && n <= 6:
			return time.Weekday(n), true
		case n == 7:
			return time.Sunday, true
		default:
			return 0, false
		}
	}

	switch s {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}
