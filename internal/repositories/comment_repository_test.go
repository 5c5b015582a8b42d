package repositories

import (
	"errors"
	"testing"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

func TestCreateCommentAndReply(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "ana")
	board := createTestBoard(t, db, owner, models.VisibilityPrivate)

	top := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "should we go in May?"}
	if err := repo.CreateComment(top); err != nil {
		t.Fatal(err)
	}
	reply := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "May works", ParentID: &top.ID}
	if err := repo.CreateComment(reply); err != nil {
		t.Fatal(err)
	}

	reloaded, _ := NewPostgresBoardRepository(db).GetBoardByID(board.ID)
	if reloaded.CommentCount != 2 {
		t.Fatalf("comment_count = %d, want 2", reloaded.CommentCount)
	}

	// only the top-level comment reaches the activity feed
	var count int64
	db.Model(&models.BoardActivity{}).
		Where("board_id = ? AND activity_type = ?", board.ID, models.ActivityCommentAdded).
		Count(&count)
	if count != 1 {
		t.Fatalf("COMMENT_ADDED entries = %d, want 1", count)
	}
}

func TestListByBoardPinnedFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "ana")
	board := createTestBoard(t, db, owner, models.VisibilityPrivate)

	first := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "first"}
	second := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "second"}
	for _, c := range []*models.BoardComment{first, second} {
		if err := repo.CreateComment(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.SetPinned(second, true); err != nil {
		t.Fatal(err)
	}

	comments, err := repo.ListByBoard(board.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].ID != second.ID {
		t.Fatalf("pinned comment should sort first: %+v", comments)
	}
	if comments[0].User.Username != "ana" {
		t.Fatalf("user not preloaded: %+v", comments[0].User)
	}
}

func TestReactionLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentRepository(db)
	owner := createTestUser(t, db, "ana")
	fan := createTestUser(t, db, "bruno")
	board := createTestBoard(t, db, owner, models.VisibilityPrivate)
	comment := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "found flights"}
	if err := repo.CreateComment(comment); err != nil {
		t.Fatal(err)
	}

	reaction := &models.CommentReaction{CommentID: comment.ID, UserID: fan.ID, Emoji: "🎉"}
	if err := repo.AddReaction(reaction); err != nil {
		t.Fatal(err)
	}
	dup := &models.CommentReaction{CommentID: comment.ID, UserID: fan.ID, Emoji: "🎉"}
	if err := repo.AddReaction(dup); err == nil {
		t.Fatal("same user+emoji twice should hit the unique index")
	}
	// a different emoji from the same user is a separate reaction
	other := &models.CommentReaction{CommentID: comment.ID, UserID: fan.ID, Emoji: "✈️"}
	if err := repo.AddReaction(other); err != nil {
		t.Fatal(err)
	}

	if err := repo.RemoveReaction(comment.ID, fan.ID, "🎉"); err != nil {
		t.Fatal(err)
	}
	if err := repo.RemoveReaction(comment.ID, fan.ID, "🎉"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("removing a missing reaction: err = %v, want ErrRecordNotFound", err)
	}
}
