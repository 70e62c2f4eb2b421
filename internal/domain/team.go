package domain

import "time"

// Team vincula un grupo de Telegram con un proyecto de Redmine.
// Un grupo puede tener a lo sumo un vínculo a la vez.
type Team struct {
	ID                 string
	TelegramGroupID    int64
	RedmineProjectID   int
	RedmineProjectCode string
	Name               string
	CreatedBy          int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
