package redmine

import (
	"context"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/samber/lo"
)

// projectInclude is appended to every project fetch.
const projectInclude = "include=enabled_modules,issue_categories,trackers"

func (c *Client) Issues(ctx context.Context, opts Options, callback ListCallback[models.Issue]) error {
	return FetchMany(ctx, c, "issues", opts, DecodeIssue, callback)
}

// Issue fetches a single issue.
func (c *Client) Issue(ctx context.Context, id models.ID, callback ItemCallback[models.Issue]) error {
	return fetchByID(ctx, c, "issues", id, "issue", "", DecodeIssue, callback)
}

// Projects lists projects with their enabled modules, categories and
// trackers.
func (c *Client) Projects(ctx context.Context, opts Options, callback ListCallback[models.Project]) error {
	return fetchMany(ctx, c, "projects", joinQuery(opts.Filter, projectInclude), opts.All, DecodeProject, nil, callback)
}

func (c *Client) Project(ctx context.Context, id models.ID, callback ItemCallback[models.Project]) error {
	return fetchByID(ctx, c, "projects", id, "project", projectInclude, DecodeProject, callback)
}

func (c *Client) Users(ctx context.Context, opts Options, callback ListCallback[models.User]) error {
	return FetchMany(ctx, c, "users", opts, DecodeUser, callback)
}

func (c *Client) User(ctx context.Context, id models.ID, callback ItemCallback[models.User]) error {
	return fetchByID(ctx, c, "users", id, "user", "", DecodeUser, callback)
}

// CurrentUser fetches the user the client is authenticated as.
func (c *Client) CurrentUser(ctx context.Context, callback ItemCallback[models.User]) error {
	return FetchOne(ctx, c, "users/current", "user", "", DecodeUser, callback)
}

func (c *Client) Trackers(ctx context.Context, opts Options, callback ListCallback[models.Tracker]) error {
	return FetchMany(ctx, c, "trackers", opts, DecodeTracker, callback)
}

func (c *Client) IssueStatuses(ctx context.Context, opts Options, callback ListCallback[models.IssueStatus]) error {
	return FetchMany(ctx, c, "issue_statuses", opts, DecodeIssueStatus, callback)
}

func (c *Client) TimeEntries(ctx context.Context, opts Options, callback ListCallback[models.TimeEntry]) error {
	return FetchMany(ctx, c, "time_entries", opts, DecodeTimeEntry, callback)
}

// Enumerations lists the entries of a named enumeration such as
// "issue_priorities" or "time_entry_activities".
func (c *Client) Enumerations(ctx context.Context, enumeration string, opts Options, callback ListCallback[models.Enumeration]) error {
	return FetchMany(ctx, c, "enumerations/"+enumeration, opts, DecodeEnumeration, callback)
}

func (c *Client) IssuePriorities(ctx context.Context, opts Options, callback ListCallback[models.Enumeration]) error {
	return c.Enumerations(ctx, "issue_priorities", opts, callback)
}

func (c *Client) TimeEntryActivities(ctx context.Context, opts Options, callback ListCallback[models.Enumeration]) error {
	return c.Enumerations(ctx, "time_entry_activities", opts, callback)
}

// IssueCategories lists the categories of a project.
func (c *Client) IssueCategories(ctx context.Context, projectID models.ID, opts Options, callback ListCallback[models.IssueCategory]) error {
	if !projectID.IsSet() {
		return ErrMissingID
	}
	return FetchMany(ctx, c, "projects/"+projectID.String()+"/issue_categories", opts, DecodeIssueCategory, callback)
}

// Memberships lists the members of a project.
func (c *Client) Memberships(ctx context.Context, projectID models.ID, opts Options, callback ListCallback[models.Membership]) error {
	if !projectID.IsSet() {
		return ErrMissingID
	}
	return FetchMany(ctx, c, "projects/"+projectID.String()+"/memberships", opts, DecodeMembership, callback)
}

// Versions lists the versions of a project.
func (c *Client) Versions(ctx context.Context, projectID models.ID, opts Options, callback ListCallback[models.Version]) error {
	if !projectID.IsSet() {
		return ErrMissingID
	}
	return FetchMany(ctx, c, "projects/"+projectID.String()+"/versions", opts, DecodeVersion, callback)
}

func (c *Client) Version(ctx context.Context, id models.ID, callback ItemCallback[models.Version]) error {
	return fetchByID(ctx, c, "versions", id, "version", "", DecodeVersion, callback)
}

// CustomFieldFilter narrows custom field definitions on the client side.
// Unset members match everything.
type CustomFieldFilter struct {
	// Type matches the customized type, e.g. "issue" or "time_entry".
	Type      string
	ProjectID models.ID
	TrackerID models.ID
}

// Match reports whether cf passes the filter. A field applies to a project
// when it is enabled for all projects or lists the project explicitly.
func (f CustomFieldFilter) Match(cf models.CustomField) bool {
	if f.Type != "" && cf.Type != f.Type {
		return false
	}
	if f.ProjectID.IsSet() && !cf.AllProjects && !lo.ContainsBy(cf.Projects, refIs(f.ProjectID)) {
		return false
	}
	if f.TrackerID.IsSet() && !lo.ContainsBy(cf.Trackers, refIs(f.TrackerID)) {
		return false
	}
	return true
}

func refIs(id models.ID) func(models.Ref) bool {
	return func(r models.Ref) bool { return r.ID == id }
}

// CustomFields lists custom field definitions matching filter.
func (c *Client) CustomFields(ctx context.Context, filter CustomFieldFilter, opts Options, callback ListCallback[models.CustomField]) error {
	return fetchMany(ctx, c, "custom_fields", opts.Filter, opts.All, DecodeCustomField, filter.Match, callback)
}

func fetchByID[T any](ctx context.Context, c *Client, resource string, id models.ID, key, query string, decode Decoder[T], callback ItemCallback[T]) error {
	if !id.IsSet() {
		return ErrMissingID
	}
	return FetchOne(ctx, c, resource+"/"+id.String(), key, query, decode, callback)
}
