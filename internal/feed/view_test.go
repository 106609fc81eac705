package feed

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildViewOrdering(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)
	groups := []*Group{
		mkGroup("v2", now, 2,
			mkComment("c3", "v2", now.Add(-time.Hour)),
			mkComment("c4", "v2", now.Add(-30*time.Minute)),
		),
		mkGroup("v1", now.Add(-48*time.Hour), 2,
			mkComment("c1", "v1", now.Add(-48*time.Hour)),
			mkComment("c2", "v1", now.Add(-47*time.Hour)),
		),
	}

	entries := BuildView(groups, now)

	// Non-decreasing timestamps across comment entries.
	var prev time.Time
	for _, e := range entries {
		if e.Kind != EntryComment {
			continue
		}
		if e.Comment.CreatedAt.Before(prev) {
			t.Errorf("comment %s out of order", e.Comment.ID)
		}
		prev = e.Comment.CreatedAt
	}

	wantIDs := []string{"c1", "c2", "c3", "c4"}
	var gotIDs []string
	for _, e := range entries {
		if e.Kind == EntryComment {
			gotIDs = append(gotIDs, e.Comment.ID)
		}
	}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("comment order = %v, want %v", gotIDs, wantIDs)
	}
}

func TestBuildViewDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)
	ts := now.Add(-time.Hour)
	// Same timestamp on every comment: order must come from flattening order
	// and stay put across calls.
	groups := []*Group{
		mkGroup("v1", now, 2, mkComment("a", "v1", ts), mkComment("b", "v1", ts)),
		mkGroup("v2", now, 1, mkComment("c", "v2", ts)),
	}

	first := BuildView(groups, now)
	second := BuildView(groups, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("BuildView is not deterministic for the same snapshot")
	}

	var ids []string
	for _, e := range first {
		if e.Kind == EntryComment {
			ids = append(ids, e.Comment.ID)
		}
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("tie order = %v, want flattening order [a b c]", ids)
	}
}

func TestBuildViewSeparatorLabels(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local) // a Monday

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today", now.Add(-time.Hour), "Today"},
		{"yesterday", now.AddDate(0, 0, -1), "Yesterday"},
		{"three days ago", now.AddDate(0, 0, -3), "Friday"},
		{"six days ago", now.AddDate(0, 0, -6), "Tuesday"},
		{"seven days ago", now.AddDate(0, 0, -7), "May 13, 2024"},
		{"last month", now.AddDate(0, -1, 0), "April 20, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := []*Group{mkGroup("v1", now, 1, mkComment("c1", "v1", tt.at))}
			entries := BuildView(groups, now)
			if len(entries) != 2 {
				t.Fatalf("got %d entries, want separator + comment", len(entries))
			}
			if entries[0].Kind != EntryDateSeparator {
				t.Fatal("first entry is not a separator")
			}
			if entries[0].Label != tt.want {
				t.Errorf("label = %q, want %q", entries[0].Label, tt.want)
			}
		})
	}
}

func TestBuildViewSeparatorPerDayChange(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)
	groups := []*Group{
		mkGroup("v1", now, 4,
			mkComment("c1", "v1", now.AddDate(0, 0, -1).Add(-time.Hour)),
			mkComment("c2", "v1", now.AddDate(0, 0, -1)),
			mkComment("c3", "v1", now.Add(-2*time.Hour)),
			mkComment("c4", "v1", now.Add(-time.Hour)),
		),
	}

	entries := BuildView(groups, now)

	var kinds []EntryKind
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	want := []EntryKind{
		EntryDateSeparator, EntryComment, EntryComment,
		EntryDateSeparator, EntryComment, EntryComment,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("entry kinds = %v, want %v", kinds, want)
	}
	if entries[0].Label != "Yesterday" || entries[3].Label != "Today" {
		t.Errorf("labels = %q, %q; want Yesterday, Today", entries[0].Label, entries[3].Label)
	}
}

func TestBuildViewAnnotatesGroupContext(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)
	g := mkGroup("v1", now, 1, mkComment("c1", "v1", now))
	g.Status = "in_progress"
	g.Assignee = "Luis Prado"

	entries := BuildView([]*Group{g}, now)
	e := entries[1]
	if e.GroupID != "v1" || e.GroupStatus != "in_progress" || e.Assignee != "Luis Prado" {
		t.Errorf("annotation = {%s %s %s}", e.GroupID, e.GroupStatus, e.Assignee)
	}
}

func TestBuildViewEmpty(t *testing.T) {
	entries := BuildView(nil, time.Now())
	if len(entries) != 0 {
		t.Errorf("got %d entries for empty store, want 0", len(entries))
	}
}
