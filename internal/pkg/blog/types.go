package blog

import (
	"errors"

	"github.com/timenowsbs/timenow/app/models"
)

// ErrUnauthorized is returned when a caller tries to edit or delete a comment
// it does not own, or when no identity is attached at all.
var ErrUnauthorized = errors.New("unauthorized")

// ErrValidation is returned for malformed comment input.
var ErrValidation = errors.New("validation failed")

// CommentInput is a visitor comment submission. UserID is zero for anonymous
// visitors; anonymous comments can never be edited or deleted afterwards.
type CommentInput struct {
	PostID          uint
	UserID          uint
	AuthorName      string
	AuthorEmail     string
	Content         string
	ParentCommentID *uint
}

// ThreadedComment is a root comment with its direct replies attached.
// Replies-to-replies are flattened under the root; the tree never goes
// deeper than one level.
type ThreadedComment struct {
	models.BlogComment
	AvatarURL string               `json:"avatar_url"`
	Replies   []models.BlogComment `json:"replies"`
}

// PostStats aggregates the per-post counters shown next to each article.
type PostStats struct {
	CommentsCount  int64 `json:"comments_count"`
	HelpfulCount   int64 `json:"helpful_count"`
	UnhelpfulCount int64 `json:"unhelpful_count"`
}
