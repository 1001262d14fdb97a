package analytics

import "danceslot/internal/booking"

const (
	recentDays  = 30
	weeksShown  = 8
	percentBase = 100
)

// Point is one bucket of a series. Date is the bucket start as YYYY-MM-DD.
type Point struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
	Attended int    `json:"attended"`
}

type Report struct {
	Total          int                    `json:"total"`
	Attended       int                    `json:"attended"`
	AttendanceRate int                    `json:"attendance_rate"`
	RecentTotal    int                    `json:"recent_total"`
	RecentAttended int                    `json:"recent_attended"`
	RecentRate     int                    `json:"recent_rate"`
	ByStatus       map[booking.Status]int `json:"by_status"`
	Daily          []Point                `json:"daily"`
	Weekly         []Point                `json:"weekly"`
}
