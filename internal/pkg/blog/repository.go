package blog

import (
	"github.com/timenowsbs/timenow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the moderation gate.
type Repository interface {
	ListVisibleComments(postID uint) ([]models.BlogComment, error)
	GetComment(commentID uint) (*models.BlogComment, error)
	CreateComment(comment *models.BlogComment) error
	UpdateCommentContent(commentID uint, content string) error
	DeleteComment(commentID uint) error
	UpsertVote(vote *models.BlogHelpfulVote) error
	CountVisibleComments(postID uint) (int64, error)
	CountVotes(postID uint, isHelpful bool) (int64, error)
	GetVote(postID uint, voterKey string) (*models.BlogHelpfulVote, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a blog repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListVisibleComments(postID uint) ([]models.BlogComment, error) {
	var comments []models.BlogComment
	err := r.db.
		Where("post_id = ? AND is_approved = ? AND is_spam = ?", postID, true, false).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *gormRepository) GetComment(commentID uint) (*models.BlogComment, error) {
	var comment models.BlogComment
	if err := r.db.First(&comment, commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *gormRepository) CreateComment(comment *models.BlogComment) error {
	return r.db.Create(comment).Error
}

func (r *gormRepository) UpdateCommentContent(commentID uint, content string) error {
	return r.db.Model(&models.BlogComment{}).
		Where("id = ?", commentID).
		Update("content", content).Error
}

func (r *gormRepository) DeleteComment(commentID uint) error {
	return r.db.Delete(&models.BlogComment{}, commentID).Error
}

func (r *gormRepository) UpsertVote(vote *models.BlogHelpfulVote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "post_id"},
			{Name: "voter_key"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_helpful",
			"ip_address",
			"updated_at",
		}),
	}).Create(vote).Error
}

func (r *gormRepository) CountVisibleComments(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BlogComment{}).
		Where("post_id = ? AND is_approved = ? AND is_spam = ?", postID, true, false).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) CountVotes(postID uint, isHelpful bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.BlogHelpfulVote{}).
		Where("post_id = ? AND is_helpful = ?", postID, isHelpful).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) GetVote(postID uint, voterKey string) (*models.BlogHelpfulVote, error) {
	var vote models.BlogHelpfulVote
	if err := r.db.Where("post_id = ? AND voter_key = ?", postID, voterKey).First(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}
