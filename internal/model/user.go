package model

import "time"

// User stores the Telegram profile of the bot owner. The planner is a
// personal tool: the first account to start the bot becomes its owner.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
