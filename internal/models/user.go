package models

// Entry is one logged exercise: what was done, for how long, and on which day.
type Entry struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        Date    `json:"date"`
}

// User is an exercise profile with its full append-ordered log.
// Count always equals len(Log) as loaded; the log order is append order,
// not date order.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Count    int     `json:"count"`
	Log      []Entry `json:"log"`
}
