package availability

import (
	"danceslot/internal/studio"
)

type Status string

const (
	StatusAvailable  Status = "available"
	StatusOutOfRange Status = "out_of_range"
)

// Source tells where the slots of an available date came from.
type Source string

const (
	SourceCalendar Source = "calendar"
	SourceWeekly   Source = "weekly"
)

// MaxRangeDays bounds ResolveRange.
const MaxRangeDays = 31

// ResolvedSlot is a bookable slot on a concrete date. SessionID is empty for
// slots derived from the weekly template.
type ResolvedSlot struct {
	Time            string              `json:"time"`
	Type            studio.TrainingType `json:"type"`
	TrainerID       string              `json:"trainer_id"`
	TrainerName     string              `json:"trainer_name"`
	DurationMinutes int                 `json:"duration_minutes"`
	Mode            studio.SessionMode  `json:"mode"`
	SessionID       string              `json:"session_id,omitempty"`
}

// Same reports whether two slots describe the same bookable offer.
// Display-only fields are ignored.
func (s ResolvedSlot) Same(other ResolvedSlot) bool {
	return s.Time == other.Time &&
		s.Type == other.Type &&
		s.TrainerID == other.TrainerID &&
		s.Mode == other.Mode &&
		s.SessionID == other.SessionID
}

type Result struct {
	Status Status         `json:"status"`
	Date   string         `json:"date"`
	Source Source         `json:"source,omitempty"`
	Slots  []ResolvedSlot `json:"slots"`
}

// Find returns the slot of r equal to want, if r is available and has one.
func (r Result) Find(want ResolvedSlot) (ResolvedSlot, bool) {
	if r.Status != StatusAvailable {
		return ResolvedSlot{}, false
	}
	for _, s := range r.Slots {
		if s.Same(want) {
			return s, true
		}
	}
	return ResolvedSlot{}, false
}
