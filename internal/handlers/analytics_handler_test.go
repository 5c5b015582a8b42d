package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

func newAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return NewAnalyticsHandler(
		repositories.NewPostgresBoardRepository(db),
		repositories.NewPostgresMemberRepository(db),
		repositories.NewPostgresBoardPinRepository(db),
		repositories.NewPostgresActivityRepository(db),
	)
}

type analyticsResponse struct {
	MostPopularPin  *models.Pin          `json:"mostPopularPin"`
	TopContributors []models.Contributor `json:"topContributors"`
	GrowthData      GrowthData           `json:"growthData"`
	Engagement      models.Engagement    `json:"engagement"`
}

func TestGetActivityFeed(t *testing.T) {
	db := newTestDB(t)
	h := newAnalyticsHandler(db)
	owner := createUser(t, db, "ana")
	board := createBoard(t, db, owner, models.VisibilityPublic)

	activityRepo := repositories.NewPostgresActivityRepository(db)
	if err := activityRepo.Record(board.ID, owner.ID, models.ActivityPinAdded, nil); err != nil {
		t.Fatal(err)
	}
	if err := activityRepo.Record(board.ID, owner.ID, models.ActivitySettingsUpdated, nil); err != nil {
		t.Fatal(err)
	}

	c, rec := newJSONContext(t, http.MethodGet, "/boards", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(paramID(board.ID))
	if status := httpStatus(t, h.GetActivity(c), rec); status != http.StatusOK {
		t.Fatalf("activity: %d, want 200", status)
	}
	var resp struct {
		Activity []models.BoardActivity `json:"activity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// CREATED plus the two recorded above, newest first
	if len(resp.Activity) != 3 || resp.Activity[0].ActivityType != models.ActivitySettingsUpdated {
		t.Fatalf("activity feed = %+v", resp.Activity)
	}

	c, rec = newJSONContext(t, http.MethodGet, "/boards?type=PIN_ADDED", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(paramID(board.ID))
	if status := httpStatus(t, h.GetActivity(c), rec); status != http.StatusOK {
		t.Fatalf("filtered activity: %d, want 200", status)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Activity) != 1 || resp.Activity[0].ActivityType != models.ActivityPinAdded {
		t.Fatalf("filtered activity feed = %+v", resp.Activity)
	}
}

func TestGetActivityHonorsVisibility(t *testing.T) {
	db := newTestDB(t)
	h := newAnalyticsHandler(db)
	owner := createUser(t, db, "ana")
	stranger := createUser(t, db, "bruno")
	board := createBoard(t, db, owner, models.VisibilityPrivate)

	c, rec := newJSONContext(t, http.MethodGet, "/boards", "", stranger)
	c.SetParamNames("id")
	c.SetParamValues(paramID(board.ID))
	if status := httpStatus(t, h.GetActivity(c), rec); status != http.StatusForbidden {
		t.Fatalf("stranger reading private board activity: %d, want 403", status)
	}
}

func TestGetAnalyticsEmptyBoard(t *testing.T) {
	db := newTestDB(t)
	h := newAnalyticsHandler(db)
	owner := createUser(t, db, "ana")
	board := createBoard(t, db, owner, models.VisibilityPublic)

	c, rec := newJSONContext(t, http.MethodGet, "/boards", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(paramID(board.ID))
	if status := httpStatus(t, h.GetAnalytics(c), rec); status != http.StatusOK {
		t.Fatalf("analytics: %d, want 200", status)
	}
	var resp analyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MostPopularPin != nil {
		t.Fatalf("empty board has a most popular pin: %+v", resp.MostPopularPin)
	}
	if resp.GrowthData.WindowDays != 30 {
		t.Fatalf("window days = %d, want 30", resp.GrowthData.WindowDays)
	}
}

func TestGetAnalyticsSummary(t *testing.T) {
	db := newTestDB(t)
	h := newAnalyticsHandler(db)
	owner := createUser(t, db, "ana")
	contributor := createUser(t, db, "bruno")
	board := createBoard(t, db, owner, models.VisibilityPublic)

	boardPinRepo := repositories.NewPostgresBoardPinRepository(db)
	quiet := &models.Pin{UserID: owner.ID, Title: "quiet", LikeCount: 1}
	loved := &models.Pin{UserID: contributor.ID, Title: "loved", LikeCount: 20, SaveCount: 5}
	for _, p := range []*models.Pin{quiet, loved} {
		if err := db.Create(p).Error; err != nil {
			t.Fatal(err)
		}
	}
	actorFor := map[string]uint{"quiet": owner.ID, "loved": contributor.ID}
	for _, p := range []*models.Pin{quiet, loved} {
		bp := &models.BoardPin{BoardID: board.ID, PinID: p.ID}
		if err := boardPinRepo.AddPinToBoard(bp, p, actorFor[p.Title]); err != nil {
			t.Fatal(err)
		}
	}
	comment := &models.BoardComment{BoardID: board.ID, UserID: owner.ID, Content: "notes"}
	if err := repositories.NewPostgresCommentRepository(db).CreateComment(comment); err != nil {
		t.Fatal(err)
	}

	c, rec := newJSONContext(t, http.MethodGet, "/boards", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(paramID(board.ID))
	if status := httpStatus(t, h.GetAnalytics(c), rec); status != http.StatusOK {
		t.Fatalf("analytics: %d, want 200", status)
	}
	var resp analyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.MostPopularPin == nil || resp.MostPopularPin.Title != "loved" {
		t.Fatalf("most popular pin = %+v", resp.MostPopularPin)
	}
	if resp.GrowthData.PinsAdded != 2 || resp.GrowthData.CommentsAdded != 1 {
		t.Fatalf("growth = %+v", resp.GrowthData)
	}
	if len(resp.TopContributors) != 2 {
		t.Fatalf("contributors = %+v", resp.TopContributors)
	}
	if resp.Engagement.Pins != 2 || resp.Engagement.Comments != 1 {
		t.Fatalf("engagement = %+v", resp.Engagement)
	}
}
