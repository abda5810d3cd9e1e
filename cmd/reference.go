package cmd

import (
	"context"
	"fmt"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// listCmd builds a command that lists every record of a reference resource.
func listCmd[T any](use, short, what string,
	fetch func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[T]) error,
	header table.Row, row func(T) table.Row,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[T]) error {
				return fetch(cmd.Context(), client, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", what, err)
			}
			return list(p, items, header, row)
		},
	}
}

var everything = redmine.Options{All: true}

func newTrackersCmd() *cobra.Command {
	return listCmd("trackers", "List trackers", "trackers",
		func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[models.Tracker]) error {
			return client.Trackers(ctx, everything, cb)
		},
		table.Row{"ID", "Name"},
		func(t models.Tracker) table.Row { return table.Row{t.ID, t.Name} })
}

func newStatusesCmd() *cobra.Command {
	return listCmd("statuses", "List issue statuses", "issue statuses",
		func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[models.IssueStatus]) error {
			return client.IssueStatuses(ctx, everything, cb)
		},
		table.Row{"ID", "Name", "Closed", "Default"},
		func(s models.IssueStatus) table.Row { return table.Row{s.ID, s.Name, s.IsClosed, s.IsDefault} })
}

func enumerationRow(e models.Enumeration) table.Row {
	return table.Row{e.ID, e.Name, e.IsDefault}
}

func newPrioritiesCmd() *cobra.Command {
	return listCmd("priorities", "List issue priorities", "issue priorities",
		func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[models.Enumeration]) error {
			return client.IssuePriorities(ctx, everything, cb)
		},
		table.Row{"ID", "Name", "Default"}, enumerationRow)
}

func newActivitiesCmd() *cobra.Command {
	return listCmd("activities", "List time entry activities", "time entry activities",
		func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[models.Enumeration]) error {
			return client.TimeEntryActivities(ctx, everything, cb)
		},
		table.Row{"ID", "Name", "Default"}, enumerationRow)
}

func newCustomFieldsCmd() *cobra.Command {
	var filter redmine.CustomFieldFilter
	var projectID, trackerID int

	cmd := listCmd("custom-fields", "List custom field definitions", "custom fields",
		func(ctx context.Context, client *redmine.Client, cb redmine.ListCallback[models.CustomField]) error {
			if projectID > 0 {
				filter.ProjectID = models.NewID(projectID)
			}
			if trackerID > 0 {
				filter.TrackerID = models.NewID(trackerID)
			}
			return client.CustomFields(ctx, filter, everything, cb)
		},
		table.Row{"ID", "Name", "Type", "Format", "Required", "Trackers"},
		func(cf models.CustomField) table.Row {
			return table.Row{cf.ID, cf.Name, cf.Type, cf.Format, cf.IsRequired, refNames(cf.Trackers)}
		})

	cmd.Long = `List custom field definitions. Requires administrator privileges.`
	cmd.Flags().StringVar(&filter.Type, "type", "", "customized type, e.g. 'issue' or 'time_entry'")
	cmd.Flags().IntVar(&projectID, "project", 0, "only fields available in this project")
	cmd.Flags().IntVar(&trackerID, "tracker", 0, "only fields enabled for this tracker")
	return cmd
}
