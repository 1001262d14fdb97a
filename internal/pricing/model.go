package pricing

import (
	"time"

	"github.com/lib/pq"
)

// Plan is a subscription option shown on the pricing page. Price is in
// whole hryvnias.
type Plan struct {
	ID          string         `db:"id" json:"id" validate:"required,max=50"`
	Name        string         `db:"name" json:"name" validate:"required,max=100"`
	Price       int            `db:"price" json:"price" validate:"gte=0"`
	Period      string         `db:"period" json:"period" validate:"required,max=30"`
	Description string         `db:"description" json:"description" validate:"max=500"`
	Features    pq.StringArray `db:"features" json:"features"`
	Active      bool           `db:"active" json:"active"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

type SavePlansRequest struct {
	Plans []Plan `json:"plans" binding:"required"`
}

// Defaults are served when nothing is stored and fill in the features of
// stored plans that have none.
func Defaults() []Plan {
	return []Plan{
		{
			ID:          "trial",
			Name:        "ПРОБНЕ",
			Price:       150,
			Period:      "грн",
			Description: "Перше заняття для новачків",
			Features:    pq.StringArray{"1 пробне заняття", "Вибір будь-якого напрямку", "Знайомство з тренером", "Оцінка рівня"},
			Active:      true,
		},
		{
			ID:          "single",
			Name:        "РАЗОВЕ",
			Price:       200,
			Period:      "грн",
			Description: "Одне заняття без абонементу",
			Features:    pq.StringArray{"1 заняття 60 хв", "Будь-який напрямок", "Гнучкий графік", "Без зобов'язань"},
			Active:      true,
		},
		{
			ID:          "monthly",
			Name:        "АБОНЕМЕНТ",
			Price:       1200,
			Period:      "грн/міс",
			Description: "8 занять на місяць",
			Features: pq.StringArray{
				"8 занять на місяць", "Заморозка до 7 днів", "Знижка 25%", "Пріоритетний запис", "Доступ до всіх напрямків",
			},
			Active: true,
		},
		{
			ID:          "unlimited",
			Name:        "БЕЗЛІМ",
			Price:       2000,
			Period:      "грн/міс",
			Description: "Необмежені заняття",
			Features: pq.StringArray{
				"Безлімітні заняття", "Всі напрямки включено", "Персональні поради",
				"Заморозка до 14 днів", "VIP підтримка", "Ексклюзивні майстер-класи",
			},
			Active: true,
		},
	}
}
