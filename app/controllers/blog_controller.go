package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/blog"
	"github.com/timenowsbs/timenow/internal/pkg/cache"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/metrics/counter"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

const (
	voterCookieName = "tn_voter"
	voterCookieAge  = 365 * 24 * time.Hour

	statsCacheTTL = 30 * time.Second
)

// HandleBlogPosts lists published posts, newest first.
func HandleBlogPosts(c *fiber.Ctx) error {
	var posts []models.BlogPost
	err := database.GetDB().
		Where("published = ?", true).
		Order("created_at DESC").
		Limit(50).
		Find(&posts).Error
	if err != nil {
		log.Printf("Error listing blog posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "posts_unavailable"})
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// HandleBlogPostShow returns a single published post by slug and counts the view.
func HandleBlogPostShow(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var post models.BlogPost
	err := database.GetDB().Where("slug = ? AND published = ?", slug, true).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post_not_found"})
		}
		log.Printf("Error loading blog post %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "post_unavailable"})
	}

	if err := counter.AddPostView(post.ID); err != nil {
		log.Printf("Error counting view for post %d: %v", post.ID, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// HandleBlogCommentsList returns the approved comment tree for a post.
func HandleBlogCommentsList(c *fiber.Ctx) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_post_id"})
	}

	svc := blog.NewServiceFromDB(database.GetDB())
	comments, err := svc.List(c.Context(), postID)
	if err != nil {
		log.Printf("Error listing comments for post %d: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "comments_unavailable"})
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// HandleBlogCommentCreate accepts a comment from a logged-in or anonymous
// visitor. Spam submissions are accepted but held back from every read path.
func HandleBlogCommentCreate(c *fiber.Ctx) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_post_id"})
	}

	var body struct {
		AuthorName      string `json:"author_name"`
		AuthorEmail     string `json:"author_email"`
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	userCtx := usercontext.GetUserContext(c)
	in := blog.CommentInput{
		PostID:          postID,
		UserID:          userCtx.UserID,
		AuthorName:      body.AuthorName,
		AuthorEmail:     body.AuthorEmail,
		Content:         body.Content,
		ParentCommentID: body.ParentCommentID,
	}
	if userCtx.IsLoggedIn && in.AuthorName == "" {
		in.AuthorName = userCtx.Username
	}

	svc := blog.NewServiceFromDB(database.GetDB())
	comment, err := svc.Add(c.Context(), in)
	if err != nil {
		if errors.Is(err, blog.ErrValidation) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed"})
		}
		log.Printf("Error creating comment on post %d: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "comment_create_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment, "pending": !comment.IsApproved})
}

// HandleBlogCommentUpdate edits a comment the session user owns.
func HandleBlogCommentUpdate(c *fiber.Ctx) error {
	commentID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_comment_id"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	userCtx := usercontext.GetUserContext(c)
	svc := blog.NewServiceFromDB(database.GetDB())
	comment, err := svc.Update(c.Context(), commentID, userCtx.UserID, body.Content)
	if err != nil {
		return blogWriteError(c, commentID, err)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

// HandleBlogCommentDelete removes a comment the session user owns.
func HandleBlogCommentDelete(c *fiber.Ctx) error {
	commentID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_comment_id"})
	}

	userCtx := usercontext.GetUserContext(c)
	svc := blog.NewServiceFromDB(database.GetDB())
	if err := svc.Delete(c.Context(), commentID, userCtx.UserID); err != nil {
		return blogWriteError(c, commentID, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func blogWriteError(c *fiber.Ctx, commentID uint, err error) error {
	switch {
	case errors.Is(err, blog.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not_your_comment"})
	case errors.Is(err, blog.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "comment_not_found"})
	default:
		log.Printf("Error writing comment %d: %v", commentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "comment_write_failed"})
	}
}

// HandleBlogVote upserts the caller's helpful vote. Anonymous voters are
// identified by a long-lived uuid cookie; voting again flips the stored vote.
func HandleBlogVote(c *fiber.Ctx) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_post_id"})
	}

	var body struct {
		IsHelpful *bool `json:"is_helpful"`
	}
	if err := c.BodyParser(&body); err != nil || body.IsHelpful == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	userCtx := usercontext.GetUserContext(c)
	voterKey := resolveVoterKey(c, userCtx)
	ipv4, ipv6 := GetClientIP(c)
	ip := ipv4
	if ip == "" {
		ip = ipv6
	}

	svc := blog.NewServiceFromDB(database.GetDB())
	vote, err := svc.Vote(c.Context(), postID, voterKey, userCtx.UserID, *body.IsHelpful, ip)
	if err != nil {
		log.Printf("Error voting on post %d: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "vote_failed"})
	}

	_ = cache.Delete(statsCacheKey(postID))

	return c.JSON(fiber.Map{"vote": fiber.Map{"is_helpful": vote.IsHelpful}})
}

// HandleBlogUserVote reports the caller's stored vote, if any.
func HandleBlogUserVote(c *fiber.Ctx) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_post_id"})
	}

	userCtx := usercontext.GetUserContext(c)
	voterKey := resolveVoterKey(c, userCtx)

	svc := blog.NewServiceFromDB(database.GetDB())
	isHelpful, err := svc.UserVote(c.Context(), postID, voterKey)
	if err != nil {
		log.Printf("Error reading vote on post %d: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "vote_unavailable"})
	}

	return c.JSON(fiber.Map{"is_helpful": isHelpful})
}

// HandleBlogStats returns the per-post counters, cached briefly in Redis.
func HandleBlogStats(c *fiber.Ctx) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_post_id"})
	}

	key := statsCacheKey(postID)
	if cached, err := cache.Get(key); err == nil && cached != "" {
		var stats blog.PostStats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			return c.JSON(stats)
		}
	}

	svc := blog.NewServiceFromDB(database.GetDB())
	stats, err := svc.Stats(c.Context(), postID)
	if err != nil {
		log.Printf("Error computing stats for post %d: %v", postID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := cache.Set(key, string(raw), statsCacheTTL); err != nil {
			log.Printf("Error caching stats for post %d: %v", postID, err)
		}
	}

	return c.JSON(stats)
}

func statsCacheKey(postID uint) string {
	return "blog:stats:" + strconv.FormatUint(uint64(postID), 10)
}

// resolveVoterKey maps the caller to a stable voter identity, minting the
// anonymous cookie when needed.
func resolveVoterKey(c *fiber.Ctx, userCtx usercontext.UserContext) string {
	if userCtx.IsLoggedIn {
		return blog.VoterKeyForUser(userCtx.UserID)
	}

	token := c.Cookies(voterCookieName)
	if token == "" {
		token = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     voterCookieName,
			Value:    token,
			Expires:  time.Now().Add(voterCookieAge),
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	return blog.VoterKeyAnonymous(token)
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || v == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(v), nil
}
