package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StudyActivity records one AI-backed action (quiz, solve, search, ...) for the
// profile/history views. Written best-effort; never on the request path.
type StudyActivity struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind      string         `gorm:"type:varchar(50);not null;index"`
	Subject   string         `gorm:"type:varchar(100)"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"default:now();not null"`
}

func (StudyActivity) TableName() string {
	return "study_activities"
}
