package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

func newPinHandler(db *gorm.DB) *PinHandler {
	return NewPinHandler(
		repositories.NewPostgresPinRepository(db),
		repositories.NewPostgresBoardRepository(db),
		repositories.NewPostgresMemberRepository(db),
	)
}

func TestCreatePinWithBoardLink(t *testing.T) {
	db := newTestDB(t)
	h := newPinHandler(db)
	owner := createUser(t, db, "ana")
	board := createBoard(t, db, owner, models.VisibilityPrivate)

	body := `{"title":"Tram 28","location":"Lisbon, Portugal","tags":["transit"],"board_id":` + paramID(board.ID) + `}`
	c, rec := newJSONContext(t, http.MethodPost, "/pins", body, owner)
	if status := httpStatus(t, h.CreatePin(c), rec); status != http.StatusCreated {
		t.Fatalf("create pin: %d, want 201: %s", status, rec.Body.String())
	}

	var pin models.Pin
	if err := json.Unmarshal(rec.Body.Bytes(), &pin); err != nil {
		t.Fatal(err)
	}
	if _, err := repositories.NewPostgresBoardPinRepository(db).GetBoardPin(board.ID, pin.ID); err != nil {
		t.Fatalf("pin not linked to board: %v", err)
	}
}

func TestCreatePinOnForeignBoardForbidden(t *testing.T) {
	db := newTestDB(t)
	h := newPinHandler(db)
	owner := createUser(t, db, "ana")
	stranger := createUser(t, db, "bruno")
	board := createBoard(t, db, owner, models.VisibilityPrivate)

	body := `{"title":"Tram 28","location":"Lisbon, Portugal","board_id":` + paramID(board.ID) + `}`
	c, rec := newJSONContext(t, http.MethodPost, "/pins", body, stranger)
	if status := httpStatus(t, h.CreatePin(c), rec); status != http.StatusForbidden {
		t.Fatalf("stranger linking to a private board: %d, want 403", status)
	}
	// the pin itself must not exist either
	var count int64
	db.Model(&models.Pin{}).Count(&count)
	if count != 0 {
		t.Fatalf("pins created despite rejection: %d", count)
	}
}

func TestListPinsCursorWalk(t *testing.T) {
	db := newTestDB(t)
	h := newPinHandler(db)
	author := createUser(t, db, "ana")
	seedPins(t, db, author, 5)

	var titles []string
	cursor := ""
	for {
		target := "/pins?limit=2"
		if cursor != "" {
			target += "&cursor=" + url.QueryEscape(cursor)
		}
		c, rec := newJSONContext(t, http.MethodGet, target, "", nil)
		if status := httpStatus(t, h.ListPins(c), rec); status != http.StatusOK {
			t.Fatalf("list pins: %d, want 200", status)
		}
		var resp struct {
			Pins       []models.Pin `json:"pins"`
			NextCursor string       `json:"nextCursor"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		for _, p := range resp.Pins {
			titles = append(titles, p.Title)
		}
		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	want := []string{"pin-4", "pin-3", "pin-2", "pin-1", "pin-0"}
	if len(titles) != len(want) {
		t.Fatalf("walked %d pins, want %d: %v", len(titles), len(want), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", titles, want)
		}
	}
}

func TestListPinsRejectsGarbageCursor(t *testing.T) {
	db := newTestDB(t)
	h := newPinHandler(db)

	c, rec := newJSONContext(t, http.MethodGet, "/pins?cursor=%25%25nonsense", "", nil)
	if status := httpStatus(t, h.ListPins(c), rec); status != http.StatusBadRequest {
		t.Fatalf("garbage cursor: %d, want 400", status)
	}
}

func TestLikePinEndpoint(t *testing.T) {
	db := newTestDB(t)
	h := newPinHandler(db)
	author := createUser(t, db, "ana")
	fan := createUser(t, db, "bruno")
	pin := &models.Pin{UserID: author.ID, Title: "view", Location: "Porto"}
	if err := db.Create(pin).Error; err != nil {
		t.Fatal(err)
	}

	like := func() int {
		c, rec := newJSONContext(t, http.MethodPost, "/pins", "", fan)
		c.SetParamNames("id")
		c.SetParamValues(paramID(pin.ID))
		return httpStatus(t, h.LikePin(c), rec)
	}

	if status := like(); status != http.StatusOK {
		t.Fatalf("like: %d, want 200", status)
	}
	if status := like(); status != http.StatusConflict {
		t.Fatalf("double like: %d, want 409", status)
	}

	c, rec := newJSONContext(t, http.MethodDelete, "/pins", "", fan)
	c.SetParamNames("id")
	c.SetParamValues(paramID(pin.ID))
	if status := httpStatus(t, h.UnlikePin(c), rec); status != http.StatusOK {
		t.Fatalf("unlike: %d, want 200", status)
	}

	c, rec = newJSONContext(t, http.MethodDelete, "/pins", "", fan)
	c.SetParamNames("id")
	c.SetParamValues(paramID(pin.ID))
	if status := httpStatus(t, h.UnlikePin(c), rec); status != http.StatusNotFound {
		t.Fatalf("unlike without a like: %d, want 404", status)
	}

	c, rec = newJSONContext(t, http.MethodPost, "/pins", "", fan)
	c.SetParamNames("id")
	c.SetParamValues("999")
	if status := httpStatus(t, h.LikePin(c), rec); status != http.StatusNotFound {
		t.Fatalf("liking a missing pin: %d, want 404", status)
	}
}
