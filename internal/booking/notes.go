package booking

import (
	"strings"

	"danceslot/internal/studio"
)

// Line prefixes of the legacy notes column.
const (
	prefixType    = "Напрямок:"
	prefixMode    = "Формат:"
	prefixTrainer = "Тренер:"
	prefixDate    = "Дата:"
	prefixTime    = "Час:"
	prefixSource  = "Джерело:"

	contactLabel = "Контактна форма"
)

var prefixes = []string{prefixType, prefixMode, prefixTrainer, prefixDate, prefixTime, prefixSource}

// Render writes d in the line-per-field text layout of the notes column.
// The free-text comment, if any, is the first line.
func Render(d Details) string {
	var lines []string
	if c := strings.TrimSpace(d.Comment); c != "" {
		lines = append(lines, c)
	}

	if d.Source == SourceContact {
		return strings.Join(append(lines, prefixSource+" "+contactLabel), "\n")
	}

	add := func(prefix, value string) {
		if value != "" {
			lines = append(lines, prefix+" "+value)
		}
	}
	add(prefixType, string(d.Type))
	if d.Mode.Valid() {
		add(prefixMode, d.Mode.Label())
	}
	trainer := d.TrainerName
	if trainer == "" {
		trainer = d.TrainerID
	}
	add(prefixTrainer, trainer)
	add(prefixDate, d.Date)
	add(prefixTime, d.Time)

	source := d.Source
	if source != "" && d.Label != "" {
		source += " (" + d.Label + ")"
	}
	add(prefixSource, source)

	return strings.Join(lines, "\n")
}

// ParseNotes reads a notes text back into Details. Unknown lines other
// than a leading comment are ignored.
func ParseNotes(notes string) Details {
	var d Details
	if strings.TrimSpace(notes) == "" {
		return d
	}

	lines := strings.Split(notes, "\n")
	if !hasPrefix(lines[0]) {
		d.Comment = strings.TrimSpace(lines[0])
	}

	value := func(prefix string) string {
		for _, line := range lines {
			if strings.HasPrefix(line, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(line, prefix))
			}
		}
		return ""
	}

	d.Type = studio.TrainingType(value(prefixType))
	switch value(prefixMode) {
	case studio.ModeGroup.Label():
		d.Mode = studio.ModeGroup
	case studio.ModePersonal.Label():
		d.Mode = studio.ModePersonal
	}
	d.TrainerName = value(prefixTrainer)
	d.Date = value(prefixDate)
	d.Time = value(prefixTime)

	source := value(prefixSource)
	switch {
	case source == contactLabel:
		d.Source = SourceContact
	case strings.HasSuffix(source, ")") && strings.Contains(source, " ("):
		i := strings.Index(source, " (")
		d.Source = source[:i]
		d.Label = source[i+2 : len(source)-1]
	default:
		d.Source = source
	}

	return d
}

func hasPrefix(line string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
