package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newIssuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List issues",
		Long: `List issues, optionally filtered by project, status, tracker and assignee.

Only the first page is fetched unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			project, _ := flags.GetString("project")
			status, _ := flags.GetString("status")
			tracker, _ := flags.GetInt("tracker")
			assignee, _ := flags.GetString("assignee")
			sort, _ := flags.GetString("sort")
			all, _ := flags.GetBool("all")

			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			filter := redmine.IssueFilter{
				ProjectID:    project,
				StatusID:     status,
				TrackerID:    tracker,
				AssignedToID: assignee,
				Sort:         sort,
			}
			opts := redmine.Options{Filter: filter.String(), All: all}

			issues, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.Issue]) error {
				return client.Issues(cmd.Context(), opts, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list issues: %w", err)
			}

			return list(p, issues, table.Row{"ID", "Tracker", "Status", "Priority", "Subject", "Assignee", "Updated"},
				func(i models.Issue) table.Row {
					return table.Row{i.ID, refName(i.Tracker), refName(i.Status), refName(i.Priority), i.Subject, refName(i.AssignedTo), formatTime(i.UpdatedOn)}
				})
		},
	}

	cmd.Flags().StringP("project", "p", "", "project id or identifier")
	cmd.Flags().StringP("status", "s", "", "status id, or 'open', 'closed', '*'")
	cmd.Flags().IntP("tracker", "t", 0, "tracker id")
	cmd.Flags().StringP("assignee", "a", "", "assignee id, or 'me'")
	cmd.Flags().String("sort", "", "sort column, e.g. 'updated_on:desc'")
	cmd.Flags().Bool("all", false, "fetch every page")
	return cmd
}

func newIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue <id>",
		Short: "Show an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
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

			issue, err := awaitItem(cmd.Context(), func(cb redmine.ItemCallback[models.Issue]) error {
				return client.Issue(cmd.Context(), id, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to fetch issue %s: %w", id, err)
			}

			fields := [][2]string{
				{"ID", issue.ID.String()},
				{"Project", refName(issue.Project)},
				{"Tracker", refName(issue.Tracker)},
				{"Status", refName(issue.Status)},
				{"Priority", refName(issue.Priority)},
				{"Subject", issue.Subject},
				{"Author", refName(issue.Author)},
				{"Assignee", refName(issue.AssignedTo)},
				{"Category", refName(issue.Category)},
				{"Version", refName(issue.Version)},
				{"Parent", issue.ParentID.String()},
				{"Start date", formatDate(issue.StartDate)},
				{"Due date", formatDate(issue.DueDate)},
				{"Done", fmt.Sprintf("%g%%", issue.DoneRatio)},
				{"Estimated", formatHours(issue.EstimatedHours)},
				{"Created", formatTime(issue.CreatedOn)},
				{"Updated", formatTime(issue.UpdatedOn)},
			}
			for _, cf := range issue.CustomFields {
				fields = append(fields, [2]string{cf.Name, strings.Join(lo.Without(cf.Values, ""), ", ")})
			}
			fields = append(fields, [2]string{"Description", issue.Description})
			return detail(p, issue, fields)
		},
	}
}

func parseID(arg string) (models.ID, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return models.ID{}, fmt.Errorf("invalid id %q", arg)
	}
	return models.NewID(id), nil
}

func formatHours(h float64) string {
	if h == 0 {
		return ""
	}
	return strconv.FormatFloat(h, 'f', 2, 64) + "h"
}
