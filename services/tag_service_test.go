package services

import (
	"reflect"
	"testing"

	"bookmark_manager/database"
	"bookmark_manager/models"
)

func TestParseTagLabels(t *testing.T) {
	tests := []struct {
		blob string
		want []string
	}{
		{"a,b", []string{"a", "b"}},
		{" a , b ,", []string{"a", "b"}},
		{"a,a,b", []string{"a", "b"}},
		{"", nil},
		{" , ,", nil},
	}
	for _, tt := range tests {
		if got := ParseTagLabels(tt.blob); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTagLabels(%q) = %v, want %v", tt.blob, got, tt.want)
		}
	}
}

func TestSetTagsReplacesSet(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, "alice")
	inst, _ := SaveBookmark(alice.ID, SaveBookmarkInput{URL: "http://example.com/", Description: "Example", Tags: "a, b"})

	if err := SetTags(db, models.TaggableInstance, inst.ID, "b, c, d"); err != nil {
		t.Fatalf("SetTags: %v", err)
	}

	tags, err := ListTags(models.TaggableInstance, inst.ID)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"b", "c", "d"}) {
		t.Errorf("tags = %v, want [b c d]", tags)
	}

	// The dropped label's Tag row survives; only the tagging went away.
	var tagCount int64
	database.DB.Model(&models.Tag{}).Count(&tagCount)
	if tagCount != 4 {
		t.Errorf("tag count = %d, want 4", tagCount)
	}
}

func TestListBookmarksByTag(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")

	tagged, _ := SaveBookmark(alice.ID, SaveBookmarkInput{URL: "http://one.example.com/", Description: "One", Tags: "go"})
	if _, err := SaveBookmark(alice.ID, SaveBookmarkInput{URL: "http://two.example.com/", Description: "Two", Tags: "rust"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	bookmarks, err := ListBookmarksByTag("go")
	if err != nil {
		t.Fatalf("ListBookmarksByTag: %v", err)
	}
	if len(bookmarks) != 1 || bookmarks[0].ID != tagged.BookmarkID {
		t.Errorf("ListBookmarksByTag(go) = %v, want the one bookmark tagged go", bookmarks)
	}
}
