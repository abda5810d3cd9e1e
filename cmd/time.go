package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielolaszy/redmine/internal/logging"
	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func newTimeEntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time-entries",
		Short: "List time entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			project, _ := flags.GetString("project")
			issue, _ := flags.GetInt("issue")
			user, _ := flags.GetString("user")
			fromFlag, _ := flags.GetString("from")
			toFlag, _ := flags.GetString("to")
			all, _ := flags.GetBool("all")

			from, err := parseDate(fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDate(toFlag)
			if err != nil {
				return err
			}

			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			filter := redmine.TimeEntryFilter{ProjectID: project, IssueID: issue, UserID: user, From: from, To: to}
			entries, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.TimeEntry]) error {
				return client.TimeEntries(cmd.Context(), redmine.Options{Filter: filter.String(), All: all}, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list time entries: %w", err)
			}

			total := lo.SumBy(entries, func(e models.TimeEntry) float64 { return e.Hours })
			logging.Debug("listed time entries", "count", len(entries), "hours", total)
			return list(p, entries, table.Row{"ID", "Date", "User", "Project", "Issue", "Activity", "Hours", "Comment"},
				func(e models.TimeEntry) table.Row {
					return table.Row{e.ID, formatDate(e.SpentOn), refName(e.User), refName(e.Project), e.Issue.ID,
						refName(e.Activity), formatHours(e.Hours), e.Comment}
				})
		},
	}

	cmd.Flags().StringP("project", "p", "", "project id or identifier")
	cmd.Flags().IntP("issue", "i", 0, "issue id")
	cmd.Flags().StringP("user", "u", "", "user id, or 'me'")
	cmd.Flags().String("from", "", "first day, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last day, YYYY-MM-DD")
	cmd.Flags().Bool("all", false, "fetch every page")
	return cmd
}

func newLogTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log-time",
		Short: "Log time on an issue or project",
		Long: `Log time on an issue or project.

Entries shorter than one minute are rejected before anything is sent.`,
		Example: `  redmine log-time --issue 42 --hours 1.5 --activity 9 --comment "Code review"
  redmine log-time --project 2 --hours 0.25 --date 2024-03-04`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			hours, _ := flags.GetFloat64("hours")
			issue, _ := flags.GetInt("issue")
			project, _ := flags.GetInt("project")
			activity, _ := flags.GetInt("activity")
			comment, _ := flags.GetString("comment")
			dateFlag, _ := flags.GetString("date")

			if issue == 0 && project == 0 {
				return errors.New("either --issue or --project is required")
			}
			spentOn, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			entry := models.TimeEntry{Hours: hours, Comment: comment, SpentOn: spentOn}
			if issue > 0 {
				entry.Issue.ID = models.NewID(issue)
			}
			if project > 0 {
				entry.Project.ID = models.NewID(project)
			}
			if activity > 0 {
				entry.Activity.ID = models.NewID(activity)
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := awaitSaved(cmd.Context(), func(cb redmine.SuccessCallback) error {
				return client.SendTimeEntry(cmd.Context(), entry, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to log time: %w", err)
			}

			logging.Info("logged time", "id", id.String(), "hours", hours)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s as time entry #%s\n", formatHours(hours), id)
			return nil
		},
	}

	cmd.Flags().Float64("hours", 0, "hours spent, e.g. 1.5")
	cmd.Flags().IntP("issue", "i", 0, "issue id")
	cmd.Flags().IntP("project", "p", 0, "project id, when not logging on an issue")
	cmd.Flags().Int("activity", 0, "activity id (see 'redmine activities')")
	cmd.Flags().StringP("comment", "m", "", "comment")
	cmd.Flags().String("date", "", "day the time was spent, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}
