package model

import "testing"

func TestIssueValidate(t *testing.T) {
	tests := []struct {
		name    string
		issue   Issue
		wantErr bool
	}{
		{"valid", Issue{Key: "ABC-1", Summary: "x"}, false},
		{"empty key", Issue{Summary: "x"}, true},
		{"link without target", Issue{Key: "ABC-1", Links: []Link{{Name: "blocks"}}}, true},
		{"link without name", Issue{Key: "ABC-1", Links: []Link{{TargetKey: "ABC-2"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.issue.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIssueClone_IsDeep(t *testing.T) {
	orig := Issue{
		Key:     "ABC-1",
		Project: &Project{Key: "ABC", Name: "Alpha"},
		Status:  &Status{Name: "Open"},
		Links:   []Link{{Name: "blocks", TargetKey: "ABC-2"}},
	}
	clone := orig.Clone()
	clone.Project.Key = "XYZ"
	clone.Status.Name = "Done"
	clone.Links[0].TargetKey = "ABC-9"

	if orig.Project.Key != "ABC" || orig.Status.Name != "Open" || orig.Links[0].TargetKey != "ABC-2" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
}

func TestIssueAccessors_NilSafe(t *testing.T) {
	issue := &Issue{Key: "ABC-1"}
	if issue.ProjectKey() != "" || issue.StatusName() != "" {
		t.Error("expected empty accessors for issue without project/status")
	}
	if !(Link{TargetKey: "ABC-1"}).IsSelf("ABC-1") {
		t.Error("expected self-link")
	}
}
