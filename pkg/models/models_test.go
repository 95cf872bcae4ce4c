package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVideoVisibleTo(t *testing.T) {
	draft := &Video{OwnerID: "owner", IsPublished: false}
	published := &Video{OwnerID: "owner", IsPublished: true}

	if !published.VisibleTo("") {
		t.Error("Expected published video to be visible anonymously")
	}
	if draft.VisibleTo("") {
		t.Error("Expected unpublished video to be hidden from anonymous callers")
	}
	if draft.VisibleTo("someone") {
		t.Error("Expected unpublished video to be hidden from other accounts")
	}
	if !draft.VisibleTo("owner") {
		t.Error("Expected unpublished video to be visible to its owner")
	}
}

func TestPlaylistHiddenFrom(t *testing.T) {
	tests := []struct {
		visibility Visibility
		viewer     string
		hidden     bool
	}{
		{VisibilityPublic, "", false},
		{VisibilityUnlisted, "", false},
		{VisibilityPrivate, "", true},
		{VisibilityPrivate, "other", true},
		{VisibilityPrivate, "owner", false},
	}

	for _, tt := range tests {
		p := &Playlist{OwnerID: "owner", Visibility: tt.visibility}
		if got := p.HiddenFrom(tt.viewer); got != tt.hidden {
			t.Errorf("HiddenFrom(%q) on %s playlist = %v, want %v", tt.viewer, tt.visibility, got, tt.hidden)
		}
	}
}

func TestPlaylistContains(t *testing.T) {
	p := &Playlist{VideoIDs: []string{"a", "b"}}
	if !p.Contains("b") {
		t.Error("Expected playlist to contain b")
	}
	if p.Contains("c") {
		t.Error("Expected playlist not to contain c")
	}
}

func TestParseVisibility(t *testing.T) {
	for _, s := range []string{"Public", "Private", "Unlisted"} {
		if _, err := ParseVisibility(s); err != nil {
			t.Errorf("ParseVisibility(%q) failed: %v", s, err)
		}
	}
	for _, s := range []string{"", "public", "Hidden"} {
		if _, err := ParseVisibility(s); err == nil {
			t.Errorf("Expected ParseVisibility(%q) to fail", s)
		}
	}
}

func TestParseLikeKind(t *testing.T) {
	for _, s := range []string{"video", "comment", "tweet"} {
		if _, err := ParseLikeKind(s); err != nil {
			t.Errorf("ParseLikeKind(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseLikeKind("playlist"); err == nil {
		t.Error("Expected playlist to be rejected as a like kind")
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		pages       int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{2, 10, 11, 2},
		{1, 0, 5, 0},
	}

	for _, tt := range tests {
		p := NewPage(tt.page, tt.limit, tt.total)
		if p.TotalPages != tt.pages {
			t.Errorf("NewPage(%d, %d, %d).TotalPages = %d, want %d", tt.page, tt.limit, tt.total, p.TotalPages, tt.pages)
		}
	}
}

func TestAccountJSONHidesSecrets(t *testing.T) {
	a := &Account{ID: "1", Username: "ada", PasswordHash: "$2a$hash", RefreshToken: "token"}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), "$2a$hash") || strings.Contains(string(data), "token\"") {
		t.Errorf("Account JSON leaks credentials: %s", data)
	}

	pub := a.Public()
	if pub.ID != "1" || pub.Username != "ada" {
		t.Errorf("Unexpected public projection: %+v", pub)
	}
}
