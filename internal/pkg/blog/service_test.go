package blog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/timenowsbs/timenow/app/models"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for gate tests.
type fakeRepository struct {
	comments   map[uint]*models.BlogComment
	votes      map[string]*models.BlogHelpfulVote
	nextID     uint
	failCounts bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		comments: make(map[uint]*models.BlogComment),
		votes:    make(map[string]*models.BlogHelpfulVote),
	}
}

func voteKey(postID uint, voterKey string) string {
	return fmt.Sprintf("%d|%s", postID, voterKey)
}

func (f *fakeRepository) ListVisibleComments(postID uint) ([]models.BlogComment, error) {
	var out []models.BlogComment
	for _, c := range f.comments {
		if c.PostID == postID && c.IsApproved && !c.IsSpam {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetComment(commentID uint) (*models.BlogComment, error) {
	if c, ok := f.comments[commentID]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateComment(comment *models.BlogComment) error {
	f.nextID++
	comment.ID = f.nextID
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeRepository) UpdateCommentContent(commentID uint, content string) error {
	c, ok := f.comments[commentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Content = content
	return nil
}

func (f *fakeRepository) DeleteComment(commentID uint) error {
	delete(f.comments, commentID)
	return nil
}

func (f *fakeRepository) UpsertVote(vote *models.BlogHelpfulVote) error {
	key := voteKey(vote.PostID, vote.VoterKey)
	if existing, ok := f.votes[key]; ok {
		existing.IsHelpful = vote.IsHelpful
		vote.ID = existing.ID
		return nil
	}
	f.nextID++
	vote.ID = f.nextID
	copied := *vote
	f.votes[key] = &copied
	return nil
}

func (f *fakeRepository) CountVisibleComments(postID uint) (int64, error) {
	if f.failCounts {
		return 0, errors.New("count failed")
	}
	var count int64
	for _, c := range f.comments {
		if c.PostID == postID && c.IsApproved && !c.IsSpam {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) CountVotes(postID uint, isHelpful bool) (int64, error) {
	if f.failCounts {
		return 0, errors.New("count failed")
	}
	var count int64
	for _, v := range f.votes {
		if v.PostID == postID && v.IsHelpful == isHelpful {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) GetVote(postID uint, voterKey string) (*models.BlogHelpfulVote, error) {
	if v, ok := f.votes[voteKey(postID, voterKey)]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestAddFlagsSpamAndHidesIt(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	spam, err := svc.Add(ctx, CommentInput{PostID: 1, AuthorName: "Spammer", Content: "Buy cheap viagra now"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spam.IsSpam || spam.IsApproved {
		t.Fatalf("expected spam flags, got %+v", spam)
	}

	clean, err := svc.Add(ctx, CommentInput{PostID: 1, AuthorName: "Reader", Content: "Nice article"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean.IsSpam || !clean.IsApproved {
		t.Fatalf("expected auto-publish, got %+v", clean)
	}

	tree, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree) != 1 || tree[0].ID != clean.ID {
		t.Fatalf("list must hide spam rows, got %d entries", len(tree))
	}

	stats, err := svc.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CommentsCount != 1 {
		t.Fatalf("stats must exclude spam, got %d", stats.CommentsCount)
	}
}

func TestAddValidatesRequiredFields(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	for _, in := range []CommentInput{
		{PostID: 0, AuthorName: "A", Content: "x"},
		{PostID: 1, AuthorName: "", Content: "x"},
		{PostID: 1, AuthorName: "A", Content: "  "},
	} {
		if _, err := svc.Add(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestAddRejectsMalformedEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Add(ctx, CommentInput{PostID: 1, AuthorName: "A", AuthorEmail: "not-an-email", Content: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for malformed email, got %v", err)
	}
	if len(repo.comments) != 0 {
		t.Fatalf("rejected comment must not be stored")
	}

	if _, err := svc.Add(ctx, CommentInput{PostID: 1, AuthorName: "A", AuthorEmail: "reader@example.com", Content: "x"}); err != nil {
		t.Fatalf("valid email must pass: %v", err)
	}
}

func TestListBuildsOneLevelTree(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	root, _ := svc.Add(ctx, CommentInput{PostID: 2, AuthorName: "Root", Content: "root comment"})
	reply, _ := svc.Add(ctx, CommentInput{PostID: 2, AuthorName: "Reply", Content: "a reply", ParentCommentID: &root.ID})
	// A reply to a reply stays parented on the reply and must not appear as
	// a root nor spawn a second nesting level.
	nested, _ := svc.Add(ctx, CommentInput{PostID: 2, AuthorName: "Nested", Content: "deep", ParentCommentID: &reply.ID})

	tree, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected a single root, got %d", len(tree))
	}
	if tree[0].ID != root.ID {
		t.Fatalf("unexpected root: %+v", tree[0])
	}
	if len(tree[0].Replies) != 1 || tree[0].Replies[0].ID != reply.ID {
		t.Fatalf("expected one direct reply, got %+v", tree[0].Replies)
	}
	for _, r := range tree[0].Replies {
		if r.ID == nested.ID {
			t.Fatalf("nested reply must not be attached to the root's replies")
		}
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	owned, _ := svc.Add(ctx, CommentInput{PostID: 3, UserID: 10, AuthorName: "Owner", Content: "mine"})
	anon, _ := svc.Add(ctx, CommentInput{PostID: 3, AuthorName: "Ghost", Content: "anonymous"})

	if _, err := svc.Update(ctx, owned.ID, 99, "hacked"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign caller, got %v", err)
	}
	if err := svc.Delete(ctx, owned.ID, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous caller, got %v", err)
	}
	if _, err := svc.Update(ctx, anon.ID, 10, "takeover"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous rows have no owner, got %v", err)
	}

	updated, err := svc.Update(ctx, owned.ID, 10, "edited")
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("expected edited content, got %q", updated.Content)
	}
	if err := svc.Delete(ctx, owned.ID, 10); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

func TestVoteUpsertsLastWriteWins(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()
	key := VoterKeyForUser(20)

	if _, err := svc.Vote(ctx, 4, key, 20, true, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Vote(ctx, 4, key, 20, false, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.votes) != 1 {
		t.Fatalf("expected exactly one vote row, got %d", len(repo.votes))
	}
	current, err := svc.UserVote(ctx, 4, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current == nil || *current != false {
		t.Fatalf("expected last vote (unhelpful) to win, got %v", current)
	}

	stats, _ := svc.Stats(ctx, 4)
	if stats.HelpfulCount != 0 || stats.UnhelpfulCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsReturnsZerosOnCounterErrors(t *testing.T) {
	repo := newFakeRepository()
	repo.failCounts = true
	svc := NewService(repo)

	stats, err := svc.Stats(context.Background(), 5)
	if err != nil {
		t.Fatalf("counter errors must not fail the call: %v", err)
	}
	if stats.CommentsCount != 0 || stats.HelpfulCount != 0 || stats.UnhelpfulCount != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}
