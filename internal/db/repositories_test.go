package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func openTestRepositories(t *testing.T) (*gorm.DB, *Repositories) {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "bloom-repos.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database, NewRepositories(database)
}

func TestCycleRepositoryListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for index, id := range []string{"c-1", "c-2", "c-3"} {
		cycle := &models.Cycle{ID: id, UserID: "u-1", StartDate: base.AddDate(0, 0, index*28)}
		if err := repos.Cycles.Create(ctx, cycle); err != nil {
			t.Fatalf("create cycle %s: %v", id, err)
		}
	}
	if err := repos.Cycles.Create(ctx, &models.Cycle{ID: "other", UserID: "u-2", StartDate: base.AddDate(1, 0, 0)}); err != nil {
		t.Fatalf("create foreign cycle: %v", err)
	}

	cycles, err := repos.Cycles.ListRecent(ctx, "u-1", 2)
	if err != nil {
		t.Fatalf("ListRecent() unexpected error: %v", err)
	}
	if len(cycles) != 2 || cycles[0].ID != "c-3" || cycles[1].ID != "c-2" {
		t.Fatalf("expected [c-3 c-2], got %#v", cycles)
	}

	all, err := repos.Cycles.ListRecent(ctx, "u-1", 0)
	if err != nil {
		t.Fatalf("ListRecent() uncapped unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 cycles without cap, got %d", len(all))
	}
}

func TestCycleRepositoryClose(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)

	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	cycle := &models.Cycle{ID: "c-1", UserID: "u-1", StartDate: start}
	if err := repos.Cycles.Create(ctx, cycle); err != nil {
		t.Fatalf("create cycle: %v", err)
	}

	if err := repos.Cycles.Close(ctx, cycle, start.AddDate(0, 0, 29)); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	stored, err := repos.Cycles.FindByIDForUser(ctx, "c-1", "u-1")
	if err != nil {
		t.Fatalf("FindByIDForUser() unexpected error: %v", err)
	}
	if stored.IsOpen() {
		t.Fatal("expected cycle to be closed")
	}
	if !stored.EndDate.Equal(start.AddDate(0, 0, 29)) {
		t.Fatalf("expected end date %s, got %s", start.AddDate(0, 0, 29), stored.EndDate)
	}

	if _, err := repos.Cycles.FindByIDForUser(ctx, "c-1", "u-2"); err == nil {
		t.Fatal("expected foreign lookup to fail")
	}
}

func TestListSinceAppliesWindowAndLimit(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)

	now := time.Date(2026, time.May, 20, 12, 0, 0, 0, time.UTC)
	offsets := []int{0, 1, 2, 9}
	for index, offset := range offsets {
		entry := &models.SymptomLog{
			ID:          "s-" + string(rune('a'+index)),
			UserID:      "u-1",
			SymptomType: "Bloating",
			Severity:    2,
			BodyZone:    models.DefaultBodyZone,
			Timestamp:   now.AddDate(0, 0, -offset),
		}
		if err := repos.Symptoms.Create(ctx, entry); err != nil {
			t.Fatalf("create symptom: %v", err)
		}
	}

	since := now.AddDate(0, 0, -7)
	recent, err := repos.Symptoms.ListSince(ctx, "u-1", since, 0)
	if err != nil {
		t.Fatalf("ListSince() unexpected error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 symptoms inside the window, got %d", len(recent))
	}
	if recent[0].ID != "s-a" {
		t.Fatalf("expected newest symptom first, got %s", recent[0].ID)
	}

	capped, err := repos.Symptoms.ListSince(ctx, "u-1", since, 2)
	if err != nil {
		t.Fatalf("ListSince() capped unexpected error: %v", err)
	}
	if len(capped) != 2 {
		t.Fatalf("expected 2 capped symptoms, got %d", len(capped))
	}
}

func TestNutritionRepositoryKeepsFoodItems(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)

	loggedAt := time.Date(2026, time.June, 2, 8, 30, 0, 0, time.UTC)
	meal := &models.NutritionLog{
		ID:        "m-1",
		UserID:    "u-1",
		MealName:  "Oats",
		PCOSScore: 82,
		FoodItems: datatypes.JSON(`["oats","berries"]`),
		LoggedAt:  loggedAt,
	}
	if err := repos.Nutrition.Create(ctx, meal); err != nil {
		t.Fatalf("create meal: %v", err)
	}

	meals, err := repos.Nutrition.ListSince(ctx, "u-1", loggedAt.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("ListSince() unexpected error: %v", err)
	}
	if len(meals) != 1 || string(meals[0].FoodItems) != `["oats","berries"]` {
		t.Fatalf("unexpected meals %#v", meals)
	}
}

func TestCheckInRepositoryUpsertReplacesSameDay(t *testing.T) {
	ctx := context.Background()
	database, repos := openTestRepositories(t)

	day := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	first := &models.DailyCheckIn{ID: "ci-1", UserID: "u-1", Date: day, Mood: 2, EnergyLevel: 3}
	if err := repos.CheckIns.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert() unexpected error: %v", err)
	}
	second := &models.DailyCheckIn{ID: "ci-2", UserID: "u-1", Date: day, Mood: 5, EnergyLevel: 4}
	if err := repos.CheckIns.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() unexpected error: %v", err)
	}
	if second.ID != "ci-1" {
		t.Fatalf("expected upsert to keep existing id, got %s", second.ID)
	}

	var count int64
	if err := database.Model(&models.DailyCheckIn{}).Where("user_id = ?", "u-1").Count(&count).Error; err != nil {
		t.Fatalf("count check-ins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one check-in for the day, got %d", count)
	}

	stored, err := repos.CheckIns.ListSince(ctx, "u-1", day.AddDate(0, 0, -1), 0)
	if err != nil {
		t.Fatalf("ListSince() unexpected error: %v", err)
	}
	if len(stored) != 1 || stored[0].Mood != 5 || stored[0].EnergyLevel != 4 {
		t.Fatalf("expected replaced mood and energy, got %#v", stored)
	}
}

func TestHealthStreamsListUserIDs(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)
	streams := NewHealthStreams(repos)

	day := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if err := repos.Cycles.Create(ctx, &models.Cycle{ID: "c-1", UserID: "u-b", StartDate: day}); err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	if err := repos.CheckIns.Upsert(ctx, &models.DailyCheckIn{ID: "ci-1", UserID: "u-a", Date: day, Mood: 3}); err != nil {
		t.Fatalf("create check-in: %v", err)
	}
	if err := repos.CheckIns.Upsert(ctx, &models.DailyCheckIn{ID: "ci-2", UserID: "u-b", Date: day, Mood: 3}); err != nil {
		t.Fatalf("create check-in: %v", err)
	}

	userIDs, err := streams.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs() unexpected error: %v", err)
	}
	if len(userIDs) != 2 || userIDs[0] != "u-a" || userIDs[1] != "u-b" {
		t.Fatalf("expected [u-a u-b], got %#v", userIDs)
	}
}

func TestLabResultRepositoryListsNewestPanelsWithMarkers(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)
	streams := NewHealthStreams(repos)

	base := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	for index, id := range []string{"lab-1", "lab-2", "lab-3"} {
		entry := &models.LabResult{
			ID:       id,
			UserID:   "u-1",
			TestType: "Hormone panel",
			TestDate: base.AddDate(0, index, 0),
			Results: datatypes.NewJSONSlice([]models.LabMarker{
				{Marker: "Testosterone", Value: "48", Unit: "ng/dL", NormalRange: "15-70"},
				{Marker: "Fasting insulin", Value: "<2", Unit: "uIU/mL"},
			}),
		}
		if err := repos.LabResults.Create(ctx, entry); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repos.LabResults.Create(ctx, &models.LabResult{ID: "foreign", UserID: "u-2", TestType: "Lipids", TestDate: base}); err != nil {
		t.Fatalf("create foreign lab result: %v", err)
	}

	results, err := streams.ListLabResults(ctx, "u-1", time.Time{}, 2)
	if err != nil {
		t.Fatalf("ListLabResults() unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].ID != "lab-3" || results[1].ID != "lab-2" {
		t.Fatalf("expected [lab-3 lab-2], got %#v", results)
	}
	if len(results[0].Results) != 2 || results[0].Results[1].Value != "<2" || results[0].Results[0].NormalRange != "15-70" {
		t.Fatalf("expected markers to round-trip, got %#v", results[0].Results)
	}

	foreign, err := streams.ListLabResults(ctx, "u-2", time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListLabResults() foreign unexpected error: %v", err)
	}
	if len(foreign) != 1 || foreign[0].Results == nil || len(foreign[0].Results) != 0 {
		t.Fatalf("expected an empty marker list for a panel stored without markers, got %#v", foreign)
	}
}

func TestTelegramChatRepositoryLinksPerUser(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestRepositories(t)

	if _, linked, err := repos.TelegramChats.TelegramChatID(ctx, "u-1"); err != nil || linked {
		t.Fatalf("expected no chat before linking, linked=%v err=%v", linked, err)
	}

	if err := repos.TelegramChats.LinkTelegramChat(ctx, "u-1", "100"); err != nil {
		t.Fatalf("link u-1: %v", err)
	}
	if err := repos.TelegramChats.LinkTelegramChat(ctx, "u-2", "200"); err != nil {
		t.Fatalf("link u-2: %v", err)
	}
	if err := repos.TelegramChats.LinkTelegramChat(ctx, "u-1", "101"); err != nil {
		t.Fatalf("relink u-1: %v", err)
	}

	for userID, want := range map[string]string{"u-1": "101", "u-2": "200"} {
		chatID, linked, err := repos.TelegramChats.TelegramChatID(ctx, userID)
		if err != nil || !linked || chatID != want {
			t.Fatalf("TelegramChatID(%s) = %q, %v, %v; want %q", userID, chatID, linked, err, want)
		}
	}

	if err := repos.TelegramChats.UnlinkTelegramChat(ctx, "u-1"); err != nil {
		t.Fatalf("unlink u-1: %v", err)
	}
	if _, linked, err := repos.TelegramChats.TelegramChatID(ctx, "u-1"); err != nil || linked {
		t.Fatalf("expected u-1 unlinked, linked=%v err=%v", linked, err)
	}
	if chatID, _, _ := NewHealthStreams(repos).TelegramChatID(ctx, "u-2"); chatID != "200" {
		t.Fatalf("expected u-2 to keep chat 200, got %q", chatID)
	}
}
