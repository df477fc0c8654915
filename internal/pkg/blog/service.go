package blog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/utils"
	"gorm.io/gorm"
)

// Service accepts, filters and serves threaded comments for blog posts and
// records the per-identity helpful signal.
type Service struct {
	repo Repository
}

// NewService creates a moderation gate from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a moderation gate from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// VoterKeyForUser builds the vote conflict key for an authenticated user.
func VoterKeyForUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// VoterKeyAnonymous builds the vote conflict key for an anonymous visitor
// token (the uuid cookie issued on first vote).
func VoterKeyAnonymous(token string) string {
	return "anon:" + strings.TrimSpace(token)
}

// List returns the visible comments of a post as a one-level tree, newest
// first. Replies whose parent is itself a reply are flattened under the root:
// a reply's ParentCommentID is matched against roots only, never re-resolved
// against other replies.
func (s *Service) List(ctx context.Context, postID uint) ([]ThreadedComment, error) {
	_ = ctx
	if postID == 0 {
		return nil, ErrValidation
	}

	comments, err := s.repo.ListVisibleComments(postID)
	if err != nil {
		return nil, err
	}

	tree := make([]ThreadedComment, 0, len(comments))
	for _, c := range comments {
		if !c.IsRoot() {
			continue
		}
		node := ThreadedComment{
			BlogComment: c,
			AvatarURL:   utils.GetGravatarURL(c.AuthorEmail, 80),
			Replies:     make([]models.BlogComment, 0),
		}
		for _, r := range comments {
			if r.ParentCommentID != nil && *r.ParentCommentID == c.ID {
				node.Replies = append(node.Replies, r)
			}
		}
		tree = append(tree, node)
	}
	return tree, nil
}

// Add stores a new comment. Content matching the spam denylist is parked as
// unapproved spam; everything else publishes immediately.
func (s *Service) Add(ctx context.Context, in CommentInput) (*models.BlogComment, error) {
	_ = ctx
	if in.PostID == 0 || strings.TrimSpace(in.AuthorName) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation
	}

	isSpam := IsLikelySpam(in.Content)
	comment := &models.BlogComment{
		PostID:          in.PostID,
		UserID:          in.UserID,
		AuthorName:      strings.TrimSpace(in.AuthorName),
		AuthorEmail:     strings.TrimSpace(in.AuthorEmail),
		Content:         in.Content,
		ParentCommentID: in.ParentCommentID,
		IsApproved:      !isSpam,
		IsSpam:          isSpam,
	}
	if err := comment.Validate(); err != nil {
		return nil, ErrValidation
	}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update edits a comment's content after a fresh ownership check against the
// stored row. Anonymous rows have no owner and always fail.
func (s *Service) Update(ctx context.Context, commentID uint, callerUserID uint, content string) (*models.BlogComment, error) {
	_ = ctx
	if strings.TrimSpace(content) == "" {
		return nil, ErrValidation
	}
	comment, err := s.authorize(commentID, callerUserID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCommentContent(comment.ID, content); err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// Delete removes a comment after the same ownership check as Update.
func (s *Service) Delete(ctx context.Context, commentID uint, callerUserID uint) error {
	_ = ctx
	comment, err := s.authorize(commentID, callerUserID)
	if err != nil {
		return err
	}
	return s.repo.DeleteComment(comment.ID)
}

func (s *Service) authorize(commentID, callerUserID uint) (*models.BlogComment, error) {
	if callerUserID == 0 {
		return nil, ErrUnauthorized
	}
	comment, err := s.repo.GetComment(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if comment.UserID == 0 || comment.UserID != callerUserID {
		return nil, ErrUnauthorized
	}
	return comment, nil
}

// Vote upserts the helpful signal for one voter on one post. The last vote
// per identity wins; no history is kept.
func (s *Service) Vote(ctx context.Context, postID uint, voterKey string, userID uint, isHelpful bool, ipAddress string) (*models.BlogHelpfulVote, error) {
	_ = ctx
	if postID == 0 || strings.TrimSpace(voterKey) == "" {
		return nil, ErrValidation
	}

	vote := &models.BlogHelpfulVote{
		PostID:    postID,
		VoterKey:  voterKey,
		UserID:    userID,
		IsHelpful: isHelpful,
		IPAddress: ipAddress,
	}
	if err := s.repo.UpsertVote(vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// UserVote returns the voter's current vote on a post, or nil if none.
func (s *Service) UserVote(ctx context.Context, postID uint, voterKey string) (*bool, error) {
	_ = ctx
	vote, err := s.repo.GetVote(postID, voterKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	v := vote.IsHelpful
	return &v, nil
}

// Stats runs the three per-post counters concurrently. A failing counter
// contributes zero instead of failing the whole call.
func (s *Service) Stats(ctx context.Context, postID uint) (PostStats, error) {
	_ = ctx
	var stats PostStats
	if postID == 0 {
		return stats, ErrValidation
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		count, err := s.repo.CountVisibleComments(postID)
		if err != nil {
			log.Printf("blog: comment count failed for post %d: %v", postID, err)
			return
		}
		stats.CommentsCount = count
	}()
	go func() {
		defer wg.Done()
		count, err := s.repo.CountVotes(postID, true)
		if err != nil {
			log.Printf("blog: helpful count failed for post %d: %v", postID, err)
			return
		}
		stats.HelpfulCount = count
	}()
	go func() {
		defer wg.Done()
		count, err := s.repo.CountVotes(postID, false)
		if err != nil {
			log.Printf("blog: unhelpful count failed for post %d: %v", postID, err)
			return
		}
		stats.UnhelpfulCount = count
	}()

	wg.Wait()
	return stats, nil
}
