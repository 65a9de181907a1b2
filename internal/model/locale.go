package model

// Locale is a bookable venue with fixed daily operating hours.
// OpenTime and CloseTime are wall-clock "HH:MM" strings; a close time earlier
// than or equal to the open time means the venue stays open past midnight.
type Locale struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	Location    string
	OpenTime    string
	CloseTime   string
	Active      bool
}
