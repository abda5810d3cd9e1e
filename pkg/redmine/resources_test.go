package redmine

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcePaths(t *testing.T) {
	ctx := context.Background()
	id := models.NewID(2)

	testCases := []struct {
		name      string
		call      func(c *Client, done chan struct{}) error
		wantPath  string
		wantQuery string
	}{
		{
			name: "projects include related data",
			call: func(c *Client, done chan struct{}) error {
				return c.Projects(ctx, Options{Filter: "status=1"}, func([]models.Project, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/projects.json",
			wantQuery: "status=1&include=enabled_modules,issue_categories,trackers&offset=0&limit=100",
		},
		{
			name: "single project includes related data",
			call: func(c *Client, done chan struct{}) error {
				return c.Project(ctx, id, func(models.Project, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/projects/2.json",
			wantQuery: "include=enabled_modules,issue_categories,trackers",
		},
		{
			name: "issue categories",
			call: func(c *Client, done chan struct{}) error {
				return c.IssueCategories(ctx, id, Options{}, func([]models.IssueCategory, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/projects/2/issue_categories.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "memberships",
			call: func(c *Client, done chan struct{}) error {
				return c.Memberships(ctx, id, Options{}, func([]models.Membership, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/projects/2/memberships.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "versions",
			call: func(c *Client, done chan struct{}) error {
				return c.Versions(ctx, id, Options{}, func([]models.Version, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/projects/2/versions.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "issue priorities",
			call: func(c *Client, done chan struct{}) error {
				return c.IssuePriorities(ctx, Options{}, func([]models.Enumeration, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/enumerations/issue_priorities.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "time entry activities",
			call: func(c *Client, done chan struct{}) error {
				return c.TimeEntryActivities(ctx, Options{}, func([]models.Enumeration, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/enumerations/time_entry_activities.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "current user",
			call: func(c *Client, done chan struct{}) error {
				return c.CurrentUser(ctx, func(models.User, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath: "/users/current.json",
		},
		{
			name: "single issue",
			call: func(c *Client, done chan struct{}) error {
				return c.Issue(ctx, models.NewID(42), func(models.Issue, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath: "/issues/42.json",
		},
		{
			name: "issue statuses",
			call: func(c *Client, done chan struct{}) error {
				return c.IssueStatuses(ctx, Options{}, func([]models.IssueStatus, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/issue_statuses.json",
			wantQuery: "offset=0&limit=100",
		},
		{
			name: "custom fields",
			call: func(c *Client, done chan struct{}) error {
				return c.CustomFields(ctx, CustomFieldFilter{}, Options{}, func([]models.CustomField, ErrorKind, []string) { done <- struct{}{} })
			},
			wantPath:  "/custom_fields.json",
			wantQuery: "offset=0&limit=100",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubTransport{respond: respondWith(http.StatusOK, `{}`)}
			c := newTestClient(t, transport)

			done := make(chan struct{}, 1)
			require.NoError(t, tc.call(c, done))
			waitFor(t, done)

			require.Equal(t, 1, transport.count())
			assert.Equal(t, http.MethodGet, transport.request(0).Method)
			assert.Equal(t, tc.wantPath, transport.request(0).URL.Path)
			assert.Equal(t, tc.wantQuery, transport.request(0).URL.RawQuery)
		})
	}
}

func TestFetchOne(t *testing.T) {
	t.Run("decodes the wrapped record", func(t *testing.T) {
		transport := &stubTransport{respond: respondWith(http.StatusOK, `{"issue":`+issueJSON+`}`)}
		c := newTestClient(t, transport)

		done := make(chan models.Issue, 1)
		require.NoError(t, c.Issue(context.Background(), models.NewID(42), func(issue models.Issue, kind ErrorKind, _ []string) {
			assert.Equal(t, NoError, kind)
			done <- issue
		}))

		issue := waitFor(t, done)
		assert.Equal(t, models.NewID(42), issue.ID)
		assert.Equal(t, "Login page broken", issue.Subject)
	})

	t.Run("not found yields an empty record", func(t *testing.T) {
		transport := &stubTransport{respond: respondWith(http.StatusNotFound, ``)}
		c := newTestClient(t, transport)

		type result struct {
			user     models.User
			kind     ErrorKind
			messages []string
		}
		done := make(chan result, 1)
		require.NoError(t, c.User(context.Background(), models.NewID(99), func(u models.User, kind ErrorKind, messages []string) {
			done <- result{u, kind, messages}
		}))

		got := waitFor(t, done)
		assert.False(t, got.user.ID.IsSet())
		assert.Equal(t, ErrNetwork, got.kind)
		assert.Equal(t, []string{"404 Not Found"}, got.messages)
	})

	t.Run("unset id is rejected", func(t *testing.T) {
		transport := &stubTransport{respond: respondWith(http.StatusOK, `{}`)}
		c := newTestClient(t, transport)

		err := c.Issue(context.Background(), models.ID{}, func(models.Issue, ErrorKind, []string) {})
		require.ErrorIs(t, err, ErrMissingID)
		err = c.Versions(context.Background(), models.ID{}, Options{}, func([]models.Version, ErrorKind, []string) {})
		require.ErrorIs(t, err, ErrMissingID)
		assert.Equal(t, 0, transport.count())
	})
}

func TestCustomFieldFilter(t *testing.T) {
	bug := models.Ref{ID: models.NewID(1), Name: "Bug"}
	website := models.Ref{ID: models.NewID(2), Name: "Website"}
	scoped := models.CustomField{ID: models.NewID(10), Type: "issue", Trackers: []models.Ref{bug}, Projects: []models.Ref{website}}
	global := models.CustomField{ID: models.NewID(11), Type: "issue", AllProjects: true}
	timeEntry := models.CustomField{ID: models.NewID(12), Type: "time_entry", AllProjects: true}

	testCases := []struct {
		name   string
		filter CustomFieldFilter
		want   []models.ID
	}{
		{name: "no filter", filter: CustomFieldFilter{}, want: []models.ID{scoped.ID, global.ID, timeEntry.ID}},
		{name: "by type", filter: CustomFieldFilter{Type: "time_entry"}, want: []models.ID{timeEntry.ID}},
		{name: "by project", filter: CustomFieldFilter{ProjectID: models.NewID(2)}, want: []models.ID{scoped.ID, global.ID, timeEntry.ID}},
		{name: "other project", filter: CustomFieldFilter{ProjectID: models.NewID(3)}, want: []models.ID{global.ID, timeEntry.ID}},
		{name: "by tracker", filter: CustomFieldFilter{Type: "issue", TrackerID: models.NewID(1)}, want: []models.ID{scoped.ID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []models.ID
			for _, cf := range []models.CustomField{scoped, global, timeEntry} {
				if tc.filter.Match(cf) {
					got = append(got, cf.ID)
				}
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCustomFieldsFilterKeepsPaging(t *testing.T) {
	transport := &stubTransport{respond: func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("offset") == "0" {
			return jsonResponse(http.StatusOK, `{"custom_fields":[{"id":1,"customized_type":"issue"},{"id":2,"customized_type":"user"}]}`), nil
		}
		return jsonResponse(http.StatusOK, `{"custom_fields":[{"id":3,"customized_type":"issue"}]}`), nil
	}}
	c := newTestClient(t, transport)
	c.SetPageLimit(2)

	results := make(chan listResult[models.CustomField], 1)
	require.NoError(t, c.CustomFields(context.Background(), CustomFieldFilter{Type: "issue"}, Options{All: true}, collectList(results)))

	got := waitFor(t, results)
	require.Len(t, got.items, 2)
	assert.Equal(t, 1, got.items[0].ID.Int())
	assert.Equal(t, 3, got.items[1].ID.Int())
	assert.Equal(t, 2, transport.count())
}
