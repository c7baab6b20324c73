package model

// ProductivityData aggregates one calendar day of output for the stats views.
type ProductivityData struct {
	Date           string `json:"date" gorm:"primaryKey"` // YYYY-MM-DD
	CompletedTasks int    `json:"completedTasks"`
	FocusMinutes   int    `json:"focusMinutes"`
}
