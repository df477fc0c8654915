package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// BlogPost is a published article that comments and helpful votes hang off.
type BlogPost struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" validate:"required,max=255"`
	Content   string         `gorm:"type:longtext" json:"content"`
	Published bool           `gorm:"default:false;index" json:"published"`
	ViewCount int64          `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *BlogPost) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
