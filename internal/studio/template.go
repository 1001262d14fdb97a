package studio

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDuration = 60
)

var (
	ErrUnknownTrainer = errors.New("unknown trainer")
	ErrUnknownType    = errors.New("unknown training type")
)

//go:embed default.yaml
var defaultFile []byte

// File is the on-disk layout of a studio configuration.
type File struct {
	TrainingTypes []TrainingType `yaml:"training_types"`
	Trainers      []Trainer      `yaml:"trainers"`
	Weekly        []WeeklyEntry  `yaml:"weekly"`
}

// WeeklyEntry expands to one RecurringSlot per listed day.
type WeeklyEntry struct {
	Days     []string     `yaml:"days"`
	Time     string       `yaml:"time"`
	Type     TrainingType `yaml:"type"`
	Trainer  string       `yaml:"trainer"`
	Duration int          `yaml:"duration"`
	Mode     SessionMode  `yaml:"mode"`
}

// Template is the read-only weekly timetable together with the studio
// reference data. Safe for concurrent use once built.
type Template struct {
	types    []TrainingType
	trainers []Trainer
	byID     map[string]Trainer
	week     map[time.Weekday][]RecurringSlot
}

// Load reads the studio file at path, or the built-in timetable when path
// is empty.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default()
	}

	var f File
	if err := cleanenv.ReadConfig(path, &f); err != nil {
		return nil, fmt.Errorf("read studio file %s: %w", path, err)
	}
	return New(f)
}

func Default() (*Template, error) {
	return Parse(defaultFile)
}

func Parse(data []byte) (*Template, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse studio file: %w", err)
	}
	return New(f)
}

func New(f File) (*Template, error) {
	t := &Template{
		types:    append([]TrainingType(nil), f.TrainingTypes...),
		byID:     make(map[string]Trainer, len(f.Trainers)),
		week:     make(map[time.Weekday][]RecurringSlot),
		trainers: make([]Trainer, 0, len(f.Trainers)),
	}
	if len(t.types) == 0 {
		t.types = []TrainingType{HipHop, KPop, Heels, Choreography}
	}

	for _, tr := range f.Trainers {
		if tr.ID == "" {
			return nil, errors.New("trainer without id")
		}
		if _, dup := t.byID[tr.ID]; dup {
			return nil, fmt.Errorf("duplicate trainer %q", tr.ID)
		}
		for _, style := range tr.Styles {
			if !t.HasType(style) {
				return nil, fmt.Errorf("trainer %s: %w %q", tr.ID, ErrUnknownType, style)
			}
		}
		t.byID[tr.ID] = tr
		t.trainers = append(t.trainers, tr)
	}

	for i, e := range f.Weekly {
		if !ValidTime(e.Time) {
			return nil, fmt.Errorf("weekly[%d]: invalid time %q", i, e.Time)
		}
		if !t.HasType(e.Type) {
			return nil, fmt.Errorf("weekly[%d]: %w %q", i, ErrUnknownType, e.Type)
		}
		if _, ok := t.byID[e.Trainer]; !ok {
			return nil, fmt.Errorf("weekly[%d]: %w %q", i, ErrUnknownTrainer, e.Trainer)
		}
		if e.Duration == 0 {
			e.Duration = defaultDuration
		}
		if e.Duration < 0 {
			return nil, fmt.Errorf("weekly[%d]: duration must be positive", i)
		}
		if e.Mode == "" {
			e.Mode = ModeGroup
		}
		if !e.Mode.Valid() {
			return nil, fmt.Errorf("weekly[%d]: invalid mode %q", i, e.Mode)
		}
		if len(e.Days) == 0 {
			return nil, fmt.Errorf("weekly[%d]: no days", i)
		}

		for _, d := range e.Days {
			wd, ok := ParseWeekday(d)
			if !ok {
				return nil, fmt.Errorf("weekly[%d]: invalid day %q", i, d)
			}
			t.week[wd] = append(t.week[wd], RecurringSlot{
				Weekday:         wd,
				Time:            e.Time,
				Type:            e.Type,
				TrainerID:       e.Trainer,
				DurationMinutes: e.Duration,
				Mode:            e.Mode,
			})
		}
	}

	for wd := range t.week {
		slots := t.week[wd]
		sort.SliceStable(slots, func(i, j int) bool {
			if slots[i].Time != slots[j].Time {
				return slots[i].Time < slots[j].Time
			}
			return slots[i].TrainerID < slots[j].TrainerID
		})
	}

	return t, nil
}

// SlotsForWeekday returns the slots of a weekday ordered by time, then
// trainer id. The result is a copy.
func (t *Template) SlotsForWeekday(day time.Weekday) []RecurringSlot {
	slots := t.week[day]
	out := make([]RecurringSlot, len(slots))
	copy(out, slots)
	return out
}

// Week returns the full timetable keyed by weekday.
func (t *Template) Week() map[time.Weekday][]RecurringSlot {
	out := make(map[time.Weekday][]RecurringSlot, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		out[wd] = t.SlotsForWeekday(wd)
	}
	return out
}

func (t *Template) Trainers() []Trainer {
	return append([]Trainer(nil), t.trainers...)
}

func (t *Template) Trainer(id string) (Trainer, bool) {
	tr, ok := t.byID[id]
	return tr, ok
}

func (t *Template) TrainingTypes() []TrainingType {
	return append([]TrainingType(nil), t.types...)
}

func (t *Template) HasType(tt TrainingType) bool {
	for _, known := range t.types {
		if known == tt {
			return true
		}
	}
	return false
}

// TrainerName falls back to the id for unknown trainers.
func (t *Template) TrainerName(id string) string {
	if tr, ok := t.byID[id]; ok {
		return tr.Name
	}
	return id
}
