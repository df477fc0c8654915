package models

import "time"

// BlogHelpfulVote is a binary per-identity signal on a post. VoterKey is
// "user:<id>" for authenticated voters or "anon:<uuid>" from the anonymous
// voter cookie; the unique index gives vote upserts last-write-wins
// semantics without any vote history.
type BlogHelpfulVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:ux_blog_helpful_votes_post_voter,unique,priority:1" json:"post_id"`
	VoterKey  string    `gorm:"type:varchar(100);not null;index:ux_blog_helpful_votes_post_voter,unique,priority:2" json:"-"`
	UserID    uint      `gorm:"index" json:"user_id"`
	IsHelpful bool      `gorm:"not null" json:"is_helpful"`
	IPAddress string    `gorm:"type:varchar(45);default:''" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
