package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Feedback is a free-text submission from the feedback widget. Rows are kept
// for review; a copy is forwarded to the operators via mail.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Email     string    `gorm:"type:varchar(200);default:''" json:"email,omitempty" validate:"omitempty,email,max=200"`
	Message   string    `gorm:"type:text;not null" json:"message" validate:"required,min=1,max=5000"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Feedback) Validate() error {
	v := validator.New()

	return v.Struct(f)
}
