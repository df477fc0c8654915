package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// BlogComment belongs to exactly one post and optionally to one parent
// comment. Only a single level of nesting is materialized on reads; a reply's
// own children are flattened under the root. UserID is zero for anonymous
// submissions, which cannot be edited or deleted afterwards.
type BlogComment struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	PostID          uint           `gorm:"not null;index" json:"post_id"`
	Post            BlogPost       `gorm:"foreignKey:PostID" json:"-"`
	UserID          uint           `gorm:"index" json:"user_id"`
	AuthorName      string         `gorm:"type:varchar(150);not null" json:"author_name" validate:"required,min=1,max=150"`
	AuthorEmail     string         `gorm:"type:varchar(200);default:''" json:"author_email,omitempty" validate:"omitempty,email,max=200"`
	Content         string         `gorm:"type:text;not null" json:"content" validate:"required,min=1,max=5000"`
	ParentCommentID *uint          `gorm:"index" json:"parent_comment_id,omitempty"`
	IsApproved      bool           `gorm:"default:true;index" json:"is_approved"`
	IsSpam          bool           `gorm:"default:false;index" json:"is_spam"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *BlogComment) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// IsRoot reports whether the comment starts a thread.
func (c *BlogComment) IsRoot() bool {
	return c.ParentCommentID == nil
}
