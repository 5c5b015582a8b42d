package repositories

import (
	"errors"
	"testing"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

func TestCreateBoardWritesCreatedActivity(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "ana")
	board := createTestBoard(t, db, owner, models.VisibilityPrivate)

	var entries []models.BoardActivity
	if err := db.Where("board_id = ?", board.ID).Find(&entries).Error; err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ActivityType != models.ActivityCreated {
		t.Fatalf("expected one CREATED entry, got %+v", entries)
	}
}

func TestTransferOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBoardRepository(db)
	memberRepo := NewPostgresMemberRepository(db)

	owner := createTestUser(t, db, "ana")
	target := createTestUser(t, db, "bruno")
	board := createTestBoard(t, db, owner, models.VisibilityShared)

	// target starts as a regular member
	member := &models.BoardMember{BoardID: board.ID, UserID: target.ID, Role: models.RoleViewOnly, User: *target}
	if err := memberRepo.AddMember(member, owner.ID); err != nil {
		t.Fatal(err)
	}

	if err := repo.TransferOwnership(board, target); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	reloaded, err := repo.GetBoardByID(board.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.OwnerID != target.ID {
		t.Fatalf("owner_id = %d, want %d", reloaded.OwnerID, target.ID)
	}

	// the new owner must not keep a membership row
	if _, err := memberRepo.GetMember(board.ID, target.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("new owner still has a membership row (err=%v)", err)
	}

	// the previous owner is demoted to CO_ADMIN
	prev, err := memberRepo.GetMember(board.ID, owner.ID)
	if err != nil {
		t.Fatalf("previous owner has no membership row: %v", err)
	}
	if prev.Role != models.RoleCoAdmin {
		t.Fatalf("previous owner role = %q, want CO_ADMIN", prev.Role)
	}

	var count int64
	db.Model(&models.BoardActivity{}).
		Where("board_id = ? AND activity_type = ?", board.ID, models.ActivityOwnershipTransferred).
		Count(&count)
	if count != 1 {
		t.Fatalf("OWNERSHIP_TRANSFERRED entries = %d, want 1", count)
	}
}

// Forcing the final transfer step to fail must roll back the whole
// transaction: no partial state may persist.
func TestTransferOwnershipRollsBackAtomically(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBoardRepository(db)
	memberRepo := NewPostgresMemberRepository(db)

	owner := createTestUser(t, db, "ana")
	target := createTestUser(t, db, "bruno")
	board := createTestBoard(t, db, owner, models.VisibilityShared)
	member := &models.BoardMember{BoardID: board.ID, UserID: target.ID, Role: models.RoleCanAddPins, User: *target}
	if err := memberRepo.AddMember(member, owner.ID); err != nil {
		t.Fatal(err)
	}

	// Sabotage the activity append (the last step of the transaction).
	if err := db.Migrator().DropTable(&models.BoardActivity{}); err != nil {
		t.Fatal(err)
	}

	if err := repo.TransferOwnership(board, target); err == nil {
		t.Fatal("transfer should have failed")
	}

	var reloaded models.Board
	if err := db.First(&reloaded, board.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.OwnerID != owner.ID {
		t.Fatalf("owner changed despite rollback: %d", reloaded.OwnerID)
	}
	kept, err := memberRepo.GetMember(board.ID, target.ID)
	if err != nil {
		t.Fatalf("target's membership row vanished despite rollback: %v", err)
	}
	if kept.Role != models.RoleCanAddPins {
		t.Fatalf("target role mutated despite rollback: %q", kept.Role)
	}
	if _, err := memberRepo.GetMember(board.ID, owner.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("previous owner gained a membership row despite rollback (err=%v)", err)
	}
}

func TestDeleteBoardKeepsActivityTrail(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBoardRepository(db)

	owner := createTestUser(t, db, "ana")
	board := createTestBoard(t, db, owner, models.VisibilityPublic)

	if err := repo.DeleteBoard(board.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetBoardByID(board.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("board still readable after delete (err=%v)", err)
	}

	var count int64
	db.Model(&models.BoardActivity{}).Where("board_id = ?", board.ID).Count(&count)
	if count == 0 {
		t.Fatal("audit trail deleted together with the board")
	}
}

func TestIncrementViewCountIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresBoardRepository(db)
	owner := createTestUser(t, db, "ana")
	board := createTestBoard(t, db, owner, models.VisibilityPublic)

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(board.ID); err != nil {
			t.Fatal(err)
		}
	}
	reloaded, _ := repo.GetBoardByID(board.ID)
	if reloaded.ViewCount != 3 {
		t.Fatalf("view_count = %d, want 3", reloaded.ViewCount)
	}
}
