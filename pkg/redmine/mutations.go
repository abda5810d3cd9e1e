package redmine

import (
	"context"
	"time"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/samber/lo"
)

// idValue returns a pointer to the identifier, or nil when unset so that the
// field is omitted from the request body.
func idValue(id models.ID) *int {
	if !id.IsSet() {
		return nil
	}
	v := id.Int()
	return &v
}

func dateValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func refIDs(refs []models.Ref) []int {
	ids := lo.FilterMap(refs, func(r models.Ref, _ int) (int, bool) {
		return r.ID.Int(), r.ID.IsSet()
	})
	if len(ids) == 0 {
		return nil
	}
	return ids
}

type customFieldPayload struct {
	ID    int `json:"id"`
	Value any `json:"value"`
}

type issuePayload struct {
	ProjectID      *int                 `json:"project_id,omitempty"`
	TrackerID      *int                 `json:"tracker_id,omitempty"`
	StatusID       *int                 `json:"status_id,omitempty"`
	PriorityID     *int                 `json:"priority_id,omitempty"`
	CategoryID     *int                 `json:"category_id,omitempty"`
	FixedVersionID *int                 `json:"fixed_version_id,omitempty"`
	AssignedToID   *int                 `json:"assigned_to_id,omitempty"`
	ParentIssueID  *int                 `json:"parent_issue_id,omitempty"`
	Subject        string               `json:"subject,omitempty"`
	Description    string               `json:"description,omitempty"`
	DoneRatio      float64              `json:"done_ratio,omitempty"`
	EstimatedHours float64              `json:"estimated_hours,omitempty"`
	StartDate      string               `json:"start_date,omitempty"`
	DueDate        string               `json:"due_date,omitempty"`
	CustomFields   []customFieldPayload `json:"custom_fields,omitempty"`
	Notes          string               `json:"notes,omitempty"`
}

// SendIssue creates or updates an issue. A new issue needs a project and a
// subject. notes is added as a journal entry on updates.
func (c *Client) SendIssue(ctx context.Context, issue models.Issue, notes string, callback SuccessCallback) error {
	if !issue.ID.IsSet() && (!issue.Project.ID.IsSet() || issue.Subject == "") {
		reject(callback, ErrIncompleteData, "project and subject are required")
		return nil
	}

	payload := issuePayload{
		ProjectID:      idValue(issue.Project.ID),
		TrackerID:      idValue(issue.Tracker.ID),
		StatusID:       idValue(issue.Status.ID),
		PriorityID:     idValue(issue.Priority.ID),
		CategoryID:     idValue(issue.Category.ID),
		FixedVersionID: idValue(issue.Version.ID),
		AssignedToID:   idValue(issue.AssignedTo.ID),
		ParentIssueID:  idValue(issue.ParentID),
		Subject:        issue.Subject,
		Description:    issue.Description,
		DoneRatio:      issue.DoneRatio,
		EstimatedHours: issue.EstimatedHours,
		StartDate:      dateValue(issue.StartDate),
		DueDate:        dateValue(issue.DueDate),
		Notes:          notes,
	}
	for _, cf := range issue.CustomFields {
		if !cf.ID.IsSet() {
			continue
		}
		var value any = ""
		switch {
		case cf.Multiple:
			value = cf.Values
		case len(cf.Values) > 0:
			value = cf.Values[0]
		}
		payload.CustomFields = append(payload.CustomFields, customFieldPayload{ID: cf.ID.Int(), Value: value})
	}

	return c.submit(ctx, "issues", "issues", issue.ID, "issue", payload, callback)
}

type projectPayload struct {
	Name           string   `json:"name,omitempty"`
	Identifier     string   `json:"identifier,omitempty"`
	Description    string   `json:"description,omitempty"`
	IsPublic       bool     `json:"is_public"`
	ParentID       *int     `json:"parent_id,omitempty"`
	TrackerIDs     []int    `json:"tracker_ids,omitempty"`
	EnabledModules []string `json:"enabled_module_names,omitempty"`
}

// SendProject creates or updates a project. A new project needs a name and
// an identifier.
func (c *Client) SendProject(ctx context.Context, project models.Project, callback SuccessCallback) error {
	if !project.ID.IsSet() && (project.Name == "" || project.Identifier == "") {
		reject(callback, ErrIncompleteData, "name and identifier are required")
		return nil
	}
	return c.submit(ctx, "projects", "projects", project.ID, "project", projectPayload{
		Name:           project.Name,
		Identifier:     project.Identifier,
		Description:    project.Description,
		IsPublic:       project.IsPublic,
		ParentID:       idValue(project.Parent.ID),
		TrackerIDs:     refIDs(project.Trackers),
		EnabledModules: project.EnabledModules,
	}, callback)
}

type timeEntryPayload struct {
	IssueID    *int    `json:"issue_id,omitempty"`
	ProjectID  *int    `json:"project_id,omitempty"`
	ActivityID *int    `json:"activity_id,omitempty"`
	UserID     *int    `json:"user_id,omitempty"`
	Hours      float64 `json:"hours"`
	Comments   string  `json:"comments,omitempty"`
	SpentOn    string  `json:"spent_on,omitempty"`
}

// SendTimeEntry creates or updates a time entry. Entries must last at least
// one minute, and a new entry must reference an issue or a project.
func (c *Client) SendTimeEntry(ctx context.Context, entry models.TimeEntry, callback SuccessCallback) error {
	if entry.Hours*60 < 1 {
		reject(callback, ErrTimeEntryTooShort, "time entry must be at least one minute long")
		return nil
	}
	if !entry.ID.IsSet() && !entry.Issue.ID.IsSet() && !entry.Project.ID.IsSet() {
		reject(callback, ErrIncompleteData, "issue or project is required")
		return nil
	}

	payload := timeEntryPayload{
		IssueID:    idValue(entry.Issue.ID),
		ProjectID:  idValue(entry.Project.ID),
		ActivityID: idValue(entry.Activity.ID),
		UserID:     idValue(entry.User.ID),
		Hours:      entry.Hours,
		Comments:   entry.Comment,
		SpentOn:    dateValue(entry.SpentOn),
	}
	return c.submit(ctx, "time_entries", "time_entries", entry.ID, "time_entry", payload, callback)
}

type namedPayload struct {
	Name      string `json:"name,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
	IsClosed  bool   `json:"is_closed,omitempty"`
}

func (c *Client) SendTracker(ctx context.Context, tracker models.Tracker, callback SuccessCallback) error {
	if !tracker.ID.IsSet() && tracker.Name == "" {
		reject(callback, ErrIncompleteData, "name is required")
		return nil
	}
	return c.submit(ctx, "trackers", "trackers", tracker.ID, "tracker", namedPayload{Name: tracker.Name}, callback)
}

func (c *Client) SendIssueStatus(ctx context.Context, status models.IssueStatus, callback SuccessCallback) error {
	if !status.ID.IsSet() && status.Name == "" {
		reject(callback, ErrIncompleteData, "name is required")
		return nil
	}
	return c.submit(ctx, "issue_statuses", "issue_statuses", status.ID, "issue_status", namedPayload{
		Name:      status.Name,
		IsDefault: status.IsDefault,
		IsClosed:  status.IsClosed,
	}, callback)
}

// SendEnumeration creates or updates an entry of the named enumeration.
// key is the JSON member wrapping the entry, e.g. "time_entry_activity".
func (c *Client) SendEnumeration(ctx context.Context, enumeration, key string, item models.Enumeration, callback SuccessCallback) error {
	if enumeration == "" || key == "" || (!item.ID.IsSet() && item.Name == "") {
		reject(callback, ErrIncompleteData, "enumeration, key and name are required")
		return nil
	}
	path := "enumerations/" + enumeration
	return c.submit(ctx, path, path, item.ID, key, namedPayload{Name: item.Name, IsDefault: item.IsDefault}, callback)
}

type issueCategoryPayload struct {
	Name         string `json:"name,omitempty"`
	AssignedToID *int   `json:"assigned_to_id,omitempty"`
}

// SendIssueCategory creates a category in project projectID, or updates it
// when the category has an id.
func (c *Client) SendIssueCategory(ctx context.Context, projectID models.ID, category models.IssueCategory, callback SuccessCallback) error {
	if !category.ID.IsSet() && (!projectID.IsSet() || category.Name == "") {
		reject(callback, ErrIncompleteData, "project and name are required")
		return nil
	}
	return c.submit(ctx, "projects/"+projectID.String()+"/issue_categories", "issue_categories", category.ID, "issue_category",
		issueCategoryPayload{Name: category.Name, AssignedToID: idValue(category.AssignedTo.ID)}, callback)
}

type versionPayload struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Sharing     string `json:"sharing,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// SendVersion creates a version in project projectID, or updates it when the
// version has an id.
func (c *Client) SendVersion(ctx context.Context, projectID models.ID, version models.Version, callback SuccessCallback) error {
	if !version.ID.IsSet() && (!projectID.IsSet() || version.Name == "") {
		reject(callback, ErrIncompleteData, "project and name are required")
		return nil
	}
	return c.submit(ctx, "projects/"+projectID.String()+"/versions", "versions", version.ID, "version", versionPayload{
		Name:        version.Name,
		Description: version.Description,
		Status:      version.Status,
		Sharing:     version.Sharing,
		DueDate:     dateValue(version.DueDate),
	}, callback)
}

type userPayload struct {
	Login     string `json:"login,omitempty"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Mail      string `json:"mail,omitempty"`
	Password  string `json:"password,omitempty"`
}

// SendUser creates or updates a user. password is only sent when non-empty.
func (c *Client) SendUser(ctx context.Context, user models.User, password string, callback SuccessCallback) error {
	if !user.ID.IsSet() && (user.Login == "" || user.Mail == "") {
		reject(callback, ErrIncompleteData, "login and mail are required")
		return nil
	}
	return c.submit(ctx, "users", "users", user.ID, "user", userPayload{
		Login:     user.Login,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Mail:      user.Mail,
		Password:  password,
	}, callback)
}

func (c *Client) DeleteIssue(ctx context.Context, id models.ID, callback SuccessCallback) error {
	return c.remove(ctx, "issues", id, callback)
}

func (c *Client) DeleteProject(ctx context.Context, id models.ID, callback SuccessCallback) error {
	return c.remove(ctx, "projects", id, callback)
}

func (c *Client) DeleteTimeEntry(ctx context.Context, id models.ID, callback SuccessCallback) error {
	return c.remove(ctx, "time_entries", id, callback)
}

func (c *Client) DeleteVersion(ctx context.Context, id models.ID, callback SuccessCallback) error {
	return c.remove(ctx, "versions", id, callback)
}

func (c *Client) DeleteIssueCategory(ctx context.Context, id models.ID, callback SuccessCallback) error {
	return c.remove(ctx, "issue_categories", id, callback)
}
