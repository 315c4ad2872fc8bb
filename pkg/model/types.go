package model

import (
	"fmt"
)

// Issue represents a tracked work item as seen by the link tree.
type Issue struct {
	Key     string   `json:"key"`
	Summary string   `json:"summary"`
	Project *Project `json:"project,omitempty"`
	Status  *Status  `json:"status,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

// Project identifies the project an issue belongs to.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Status is the workflow state of an issue.
type Status struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Link is a named, directed edge to another issue.
// An empty Name means the link carries no type name.
type Link struct {
	Name      string `json:"name,omitempty"`
	TargetKey string `json:"target"`
}

// IsSelf reports whether the link points back at its own issue.
func (l Link) IsSelf(from string) bool {
	return l.TargetKey == from
}

// ProjectKey returns the project key or "" when the issue has no project.
func (i *Issue) ProjectKey() string {
	if i.Project == nil {
		return ""
	}
	return i.Project.Key
}

// StatusName returns the status name or "" when the issue has no status.
func (i *Issue) StatusName() string {
	if i.Status == nil {
		return ""
	}
	return i.Status.Name
}

// Clone creates a deep copy of the issue
func (i Issue) Clone() Issue {
	clone := i

	if i.Project != nil {
		v := *i.Project
		clone.Project = &v
	}
	if i.Status != nil {
		v := *i.Status
		clone.Status = &v
	}
	if i.Links != nil {
		clone.Links = make([]Link, len(i.Links))
		copy(clone.Links, i.Links)
	}

	return clone
}

// Validate checks if the issue data is logically valid
func (i *Issue) Validate() error {
	if i.Key == "" {
		return fmt.Errorf("issue key cannot be empty")
	}
	for idx, link := range i.Links {
		if link.TargetKey == "" {
			return fmt.Errorf("link %d of %s has no target", idx, i.Key)
		}
	}
	return nil
}
