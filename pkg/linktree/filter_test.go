package linktree_test

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/linktree/pkg/linktree"
	"github.com/vanderheijden86/linktree/pkg/model"
	"github.com/vanderheijden86/linktree/pkg/testutil"
)

func TestParseSet(t *testing.T) {
	tests := []struct {
		in    string
		want  []string
		isNil bool
	}{
		{"", nil, true},
		{"blocks", []string{"blocks"}, false},
		{"blocks, relates to ,", []string{"blocks", "relates to"}, false},
		{",", nil, true},
		{" , ,", nil, true},
	}
	for _, tt := range tests {
		got := linktree.ParseSet(tt.in)
		if (got == nil) != tt.isNil {
			t.Errorf("ParseSet(%q) nil = %v, want %v", tt.in, got == nil, tt.isNil)
			continue
		}
		if !tt.isNil && !reflect.DeepEqual(got.Values(), tt.want) {
			t.Errorf("ParseSet(%q) = %v, want %v", tt.in, got.Values(), tt.want)
		}
	}
}

func TestFilter_IsVisible(t *testing.T) {
	open := testutil.NewIssue("A-1", "ABC", "Open")
	done := testutil.NewIssue("A-2", "XYZ", "Done")
	bare := model.Issue{Key: "A-3"}

	tests := []struct {
		name   string
		filter linktree.Filter
		issue  model.Issue
		link   string
		want   bool
	}{
		{"no filters", linktree.Filter{}, done, "anything", true},
		{"link allowed", linktree.ParseFilter("blocks", "", ""), open, "blocks", true},
		{"link rejected", linktree.ParseFilter("blocks", "", ""), open, "relates to", false},
		{"root passes link filter", linktree.ParseFilter("blocks", "", ""), open, "", true},
		{"project allowed", linktree.ParseFilter("", "ABC", ""), open, "x", true},
		{"project rejected", linktree.ParseFilter("", "ABC", ""), done, "", false},
		{"missing project fails", linktree.ParseFilter("", "ABC", ""), bare, "", false},
		{"status allowed", linktree.ParseFilter("", "", "Open,Done"), done, "", true},
		{"missing status fails", linktree.ParseFilter("", "", "Open"), bare, "", false},
		{"all must hold", linktree.ParseFilter("blocks", "ABC", "Done"), open, "blocks", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsVisible(&tt.issue, tt.link, 0); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_ProjectExcludesRegardlessOfLinkAndStatus(t *testing.T) {
	f := linktree.Filter{Projects: linktree.NewSet("ABC")}
	for _, status := range []string{"Open", "Done", ""} {
		for _, link := range []string{"", "blocks", "relates to"} {
			issue := testutil.NewIssue("X-1", "XYZ", status)
			for depth := 0; depth < 3; depth++ {
				if f.IsVisible(&issue, link, depth) {
					t.Fatalf("XYZ issue visible with status=%q link=%q depth=%d", status, link, depth)
				}
			}
		}
	}
}

func TestFilter_IsZero(t *testing.T) {
	if !(linktree.Filter{}).IsZero() {
		t.Error("empty filter should be zero")
	}
	if linktree.ParseFilter("", "", "Open").IsZero() {
		t.Error("status filter should not be zero")
	}
}
