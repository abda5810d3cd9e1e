package redmine

import (
	"time"

	"github.com/google/go-querystring/query"
)

// IssueFilter builds the filter string of an issue list.
//
// StatusID accepts "open", "closed", "*" or a numeric id. AssignedToID
// accepts "me" or a numeric id.
type IssueFilter struct {
	ProjectID    string    `url:"project_id,omitempty"`
	SubprojectID string    `url:"subproject_id,omitempty"`
	TrackerID    int       `url:"tracker_id,omitempty"`
	StatusID     string    `url:"status_id,omitempty"`
	AssignedToID string    `url:"assigned_to_id,omitempty"`
	ParentID     int       `url:"parent_id,omitempty"`
	CategoryID   int       `url:"category_id,omitempty"`
	VersionID    int       `url:"fixed_version_id,omitempty"`
	UpdatedSince time.Time `url:"updated_on,omitempty" layout:">=2006-01-02"`
	Sort         string    `url:"sort,omitempty"`
	Include      []string  `url:"include,omitempty,comma"`
}

func (f IssueFilter) String() string {
	return encodeFilter(f)
}

// TimeEntryFilter builds the filter string of a time entry list. From and To
// bound the spent-on date, both inclusive.
type TimeEntryFilter struct {
	ProjectID string    `url:"project_id,omitempty"`
	IssueID   int       `url:"issue_id,omitempty"`
	UserID    string    `url:"user_id,omitempty"`
	From      time.Time `url:"from,omitempty" layout:"2006-01-02"`
	To        time.Time `url:"to,omitempty" layout:"2006-01-02"`
}

func (f TimeEntryFilter) String() string {
	return encodeFilter(f)
}

// UserFilter builds the filter string of a user list. Status 1 is active,
// 2 registered, 3 locked.
type UserFilter struct {
	Status  int    `url:"status,omitempty"`
	Name    string `url:"name,omitempty"`
	GroupID int    `url:"group_id,omitempty"`
}

func (f UserFilter) String() string {
	return encodeFilter(f)
}

func encodeFilter(v any) string {
	values, err := query.Values(v)
	if err != nil {
		return ""
	}
	return values.Encode()
}
