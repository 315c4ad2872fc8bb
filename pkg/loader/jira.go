package loader

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/linktree/pkg/model"
)

// record accepts both the native line format and the Jira REST issue shape.
type record struct {
	Key     string         `json:"key"`
	Summary string         `json:"summary"`
	Project *model.Project `json:"project"`
	Status  *model.Status  `json:"status"`
	Links   []model.Link   `json:"links"`
	Fields  *jiraFields    `json:"fields"`
}

type jiraFields struct {
	Summary    string         `json:"summary"`
	Project    *model.Project `json:"project"`
	Status     *model.Status  `json:"status"`
	IssueLinks []jiraLink     `json:"issuelinks"`
}

type jiraLink struct {
	Type struct {
		Name    string `json:"name"`
		Inward  string `json:"inward"`
		Outward string `json:"outward"`
	} `json:"type"`
	InwardIssue  *jiraRef `json:"inwardIssue"`
	OutwardIssue *jiraRef `json:"outwardIssue"`
}

type jiraRef struct {
	Key string `json:"key"`
}

// name and target follow Jira's direction semantics: an outward link reads
// "<this> <outward> <target>", an inward one "<this> <inward> <target>".
func (l jiraLink) resolve() (model.Link, bool) {
	switch {
	case l.OutwardIssue != nil && l.OutwardIssue.Key != "":
		return model.Link{Name: l.Type.Outward, TargetKey: l.OutwardIssue.Key}, true
	case l.InwardIssue != nil && l.InwardIssue.Key != "":
		return model.Link{Name: l.Type.Inward, TargetKey: l.InwardIssue.Key}, true
	}
	return model.Link{}, false
}

func decodeIssue(line []byte) (model.Issue, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.Issue{}, err
	}

	issue := model.Issue{
		Key:     strings.TrimSpace(rec.Key),
		Summary: rec.Summary,
		Project: rec.Project,
		Status:  rec.Status,
		Links:   rec.Links,
	}

	if rec.Fields != nil {
		issue.Summary = rec.Fields.Summary
		issue.Project = rec.Fields.Project
		issue.Status = rec.Fields.Status
		issue.Links = make([]model.Link, 0, len(rec.Fields.IssueLinks))
		for _, jl := range rec.Fields.IssueLinks {
			if link, ok := jl.resolve(); ok {
				issue.Links = append(issue.Links, link)
			}
		}
	}

	for i := range issue.Links {
		issue.Links[i].TargetKey = strings.TrimSpace(issue.Links[i].TargetKey)
	}

	return issue, nil
}
