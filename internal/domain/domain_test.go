package domain

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		got, err := ParseStatus(string(s))
		if err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}

	if _, err := ParseStatus("FINISHED"); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Error("expected error for empty status")
	}
}

func TestStatusCodeOrdering(t *testing.T) {
	if !(StatusBacklog.Code() < StatusPlaying.Code() && StatusPlaying.Code() < StatusDone.Code()) {
		t.Errorf("status codes out of order: %d %d %d",
			StatusBacklog.Code(), StatusPlaying.Code(), StatusDone.Code())
	}
}

func TestDraftIsValid(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		platform string
		want     bool
	}{
		{"both set", "Zelda", "Switch", true},
		{"empty title", "", "Switch", false},
		{"whitespace title", "   ", "Switch", false},
		{"empty platform", "Zelda", "", false},
		{"whitespace platform", "Zelda", "\t\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Draft{Title: tt.title, Platform: tt.platform}
			if got := d.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraftCommit(t *testing.T) {
	now := time.Now()
	d := Draft{
		Title:    "  Breath of the Wild  ",
		Platform: " Switch ",
		Status:   StatusPlaying,
		Rating:   4.6,
		Notes:    " great ",
	}

	g := d.Commit("abc", "covers/x.jpg", now)

	if g.Title != "Breath of the Wild" {
		t.Errorf("title not trimmed: %q", g.Title)
	}
	if g.Platform != "Switch" {
		t.Errorf("platform not trimmed: %q", g.Platform)
	}
	if g.Rating != 5 {
		t.Errorf("rating not rounded: %d", g.Rating)
	}
	if g.Notes != "great" {
		t.Errorf("notes not trimmed: %q", g.Notes)
	}
	if g.ID != "abc" || g.CoverPath != "covers/x.jpg" || !g.UpdatedAt.Equal(now) {
		t.Errorf("unexpected commit result: %+v", g)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	original := Game{
		ID:        "g1",
		Title:     "Hades",
		Platform:  "PC",
		Status:    StatusDone,
		Rating:    5,
		Notes:     "roguelike",
		CoverPath: "covers/hades.jpg",
		UpdatedAt: time.Now().Add(-time.Hour),
	}

	d := original.Draft()
	if d.IsNew() {
		t.Fatal("draft of an existing game must not be new")
	}

	later := time.Now()
	got := d.Commit(d.ID, d.CoverPath, later)

	want := original
	want.UpdatedAt = later
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft()
	if !d.IsNew() {
		t.Error("fresh draft must be new")
	}
	if d.Status != StatusBacklog {
		t.Errorf("default status = %q", d.Status)
	}
	if d.Rating != 3 {
		t.Errorf("default rating = %v", d.Rating)
	}
}
