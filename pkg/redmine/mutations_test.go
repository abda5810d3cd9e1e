package redmine

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	ok       bool
	id       models.ID
	kind     ErrorKind
	messages []string
}

func collectOutcome(ch chan outcome) SuccessCallback {
	return func(ok bool, id models.ID, kind ErrorKind, messages []string) {
		ch <- outcome{ok: ok, id: id, kind: kind, messages: messages}
	}
}

func TestValidationShortCircuits(t *testing.T) {
	ctx := context.Background()
	issueRef := models.Ref{ID: models.NewID(42)}

	testCases := []struct {
		name     string
		call     func(c *Client, cb SuccessCallback) error
		wantKind ErrorKind
	}{
		{
			name: "time entry under one minute",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendTimeEntry(ctx, models.TimeEntry{Issue: issueRef, Hours: 0.5 / 60}, cb)
			},
			wantKind: ErrTimeEntryTooShort,
		},
		{
			name: "time entry of zero hours",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendTimeEntry(ctx, models.TimeEntry{ID: models.NewID(3), Hours: 0}, cb)
			},
			wantKind: ErrTimeEntryTooShort,
		},
		{
			name: "time entry without issue or project",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendTimeEntry(ctx, models.TimeEntry{Hours: 1}, cb)
			},
			wantKind: ErrIncompleteData,
		},
		{
			name: "issue without subject",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendIssue(ctx, models.Issue{Project: models.Ref{ID: models.NewID(2)}}, "", cb)
			},
			wantKind: ErrIncompleteData,
		},
		{
			name: "issue without project",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendIssue(ctx, models.Issue{Subject: "x"}, "", cb)
			},
			wantKind: ErrIncompleteData,
		},
		{
			name: "version without project",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendVersion(ctx, models.ID{}, models.Version{Name: "1.0"}, cb)
			},
			wantKind: ErrIncompleteData,
		},
		{
			name: "delete without id",
			call: func(c *Client, cb SuccessCallback) error {
				return c.DeleteIssue(ctx, models.ID{}, cb)
			},
			wantKind: ErrIncompleteData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubTransport{respond: respondWith(http.StatusCreated, `{}`)}
			c := newTestClient(t, transport)

			results := make(chan outcome, 1)
			require.NoError(t, tc.call(c, collectOutcome(results)))

			got := waitFor(t, results)
			assert.False(t, got.ok)
			assert.False(t, got.id.IsSet())
			assert.Equal(t, tc.wantKind, got.kind)
			assert.Equal(t, 0, transport.count())
		})
	}
}

func TestCreateTimeEntry(t *testing.T) {
	transport := &stubTransport{respond: respondWith(http.StatusCreated, `{"time_entry":{"id":77,"hours":1.5}}`)}
	c := newTestClient(t, transport)

	entry := models.TimeEntry{
		Issue:    models.Ref{ID: models.NewID(42)},
		Project:  models.Ref{ID: models.NewID(2)},
		Activity: models.Ref{ID: models.NewID(9)},
		Hours:    1.5,
		Comment:  "Code review",
		SpentOn:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	results := make(chan outcome, 1)
	require.NoError(t, c.SendTimeEntry(context.Background(), entry, collectOutcome(results)))

	got := waitFor(t, results)
	assert.True(t, got.ok)
	assert.Equal(t, models.NewID(77), got.id)
	assert.Equal(t, NoError, got.kind)

	req := transport.request(0)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/time_entries.json", req.URL.Path)
	assert.JSONEq(t, `{"time_entry":{"issue_id":42,"project_id":2,"activity_id":9,"hours":1.5,"comments":"Code review","spent_on":"2024-03-04"}}`, transport.body(0))
}

func TestUpdateIssue(t *testing.T) {
	transport := &stubTransport{respond: respondWith(http.StatusNoContent, ``)}
	c := newTestClient(t, transport)

	issue := models.Issue{
		ID:         models.NewID(7),
		Subject:    "Renamed",
		Status:     models.Ref{ID: models.NewID(5)},
		AssignedTo: models.Ref{ID: models.NewID(6)},
		CustomFields: []models.CustomFieldValue{
			{ID: models.NewID(11), Values: []string{"Firefox"}},
			{ID: models.NewID(12), Values: []string{"Linux", "macOS"}, Multiple: true},
		},
	}
	results := make(chan outcome, 1)
	require.NoError(t, c.SendIssue(context.Background(), issue, "Status changed", collectOutcome(results)))

	got := waitFor(t, results)
	assert.True(t, got.ok)
	assert.Equal(t, models.NewID(7), got.id)

	req := transport.request(0)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/issues/7.json", req.URL.Path)
	assert.JSONEq(t, `{"issue":{
		"status_id":5,"assigned_to_id":6,"subject":"Renamed","notes":"Status changed",
		"custom_fields":[{"id":11,"value":"Firefox"},{"id":12,"value":["Linux","macOS"]}]
	}}`, transport.body(0))
}

func TestCreateWithoutReturnedIDIsNotSaved(t *testing.T) {
	transport := &stubTransport{respond: respondWith(http.StatusOK, `{}`)}
	c := newTestClient(t, transport)

	results := make(chan outcome, 1)
	issue := models.Issue{Project: models.Ref{ID: models.NewID(2)}, Subject: "New"}
	require.NoError(t, c.SendIssue(context.Background(), issue, "", collectOutcome(results)))

	got := waitFor(t, results)
	assert.False(t, got.ok)
	assert.Equal(t, ErrNotSaved, got.kind)
}

func TestCreateRejectedByServer(t *testing.T) {
	transport := &stubTransport{respond: respondWith(http.StatusUnprocessableEntity, `{"errors":["Subject cannot be blank"]}`)}
	c := newTestClient(t, transport)

	results := make(chan outcome, 1)
	issue := models.Issue{Project: models.Ref{ID: models.NewID(2)}, Subject: " "}
	require.NoError(t, c.SendIssue(context.Background(), issue, "", collectOutcome(results)))

	got := waitFor(t, results)
	assert.False(t, got.ok)
	assert.Equal(t, ErrNetwork, got.kind)
	assert.Equal(t, []string{"422 Unprocessable Entity", "Subject cannot be blank"}, got.messages)
}

func TestNestedCreateAndUpdatePaths(t *testing.T) {
	ctx := context.Background()
	project := models.NewID(2)

	testCases := []struct {
		name       string
		call       func(c *Client, cb SuccessCallback) error
		wantMethod string
		wantPath   string
	}{
		{
			name: "create version",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendVersion(ctx, project, models.Version{Name: "1.0"}, cb)
			},
			wantMethod: http.MethodPost,
			wantPath:   "/projects/2/versions.json",
		},
		{
			name: "update version",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendVersion(ctx, project, models.Version{ID: models.NewID(8), Status: "closed"}, cb)
			},
			wantMethod: http.MethodPut,
			wantPath:   "/versions/8.json",
		},
		{
			name: "create issue category",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendIssueCategory(ctx, project, models.IssueCategory{Name: "Backend"}, cb)
			},
			wantMethod: http.MethodPost,
			wantPath:   "/projects/2/issue_categories.json",
		},
		{
			name: "update enumeration",
			call: func(c *Client, cb SuccessCallback) error {
				return c.SendEnumeration(ctx, "time_entry_activities", "time_entry_activity", models.Enumeration{ID: models.NewID(9), Name: "Design"}, cb)
			},
			wantMethod: http.MethodPut,
			wantPath:   "/enumerations/time_entry_activities/9.json",
		},
		{
			name: "delete time entry",
			call: func(c *Client, cb SuccessCallback) error {
				return c.DeleteTimeEntry(ctx, models.NewID(77), cb)
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/time_entries/77.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubTransport{respond: respondWith(http.StatusOK, `{"version":{"id":8},"issue_category":{"id":3}}`)}
			c := newTestClient(t, transport)

			results := make(chan outcome, 1)
			require.NoError(t, tc.call(c, collectOutcome(results)))

			got := waitFor(t, results)
			assert.True(t, got.ok)
			assert.Equal(t, tc.wantMethod, transport.request(0).Method)
			assert.Equal(t, tc.wantPath, transport.request(0).URL.Path)
		})
	}
}

func TestSubmitWithoutCallback(t *testing.T) {
	transport := &stubTransport{respond: respondWith(http.StatusNoContent, ``)}
	c := newTestClient(t, transport)

	require.NoError(t, c.DeleteProject(context.Background(), models.NewID(2), nil))
	assert.Equal(t, 0, c.Pending())
	assert.Eventually(t, func() bool { return transport.count() == 1 }, eventuallyTimeout, eventuallyTick)
}
