package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			projects, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.Project]) error {
				return client.Projects(cmd.Context(), redmine.Options{All: all}, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			return list(p, projects, table.Row{"ID", "Identifier", "Name", "Parent", "Public", "Trackers"},
				func(pr models.Project) table.Row {
					return table.Row{pr.ID, pr.Identifier, pr.Name, refName(pr.Parent), pr.IsPublic, refNames(pr.Trackers)}
				})
		},
	}
	cmd.Flags().Bool("all", false, "fetch every page")
	return cmd
}

func newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project <id>",
		Short: "Show a project",
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

			project, err := awaitItem(cmd.Context(), func(cb redmine.ItemCallback[models.Project]) error {
				return client.Project(cmd.Context(), id, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to fetch project %s: %w", id, err)
			}

			return detail(p, project, [][2]string{
				{"ID", project.ID.String()},
				{"Identifier", project.Identifier},
				{"Name", project.Name},
				{"Parent", refName(project.Parent)},
				{"Public", strconv.FormatBool(project.IsPublic)},
				{"Trackers", refNames(project.Trackers)},
				{"Categories", refNames(project.Categories)},
				{"Modules", strings.Join(project.EnabledModules, ", ")},
				{"Created", formatTime(project.CreatedOn)},
				{"Description", project.Description},
			})
		},
	}
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <project-id>",
		Short: "List the versions of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
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

			versions, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.Version]) error {
				return client.Versions(cmd.Context(), projectID, redmine.Options{All: true}, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list versions: %w", err)
			}

			return list(p, versions, table.Row{"ID", "Name", "Status", "Sharing", "Due"},
				func(v models.Version) table.Row {
					return table.Row{v.ID, v.Name, v.Status, v.Sharing, formatDate(v.DueDate)}
				})
		},
	}
}

func newMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members <project-id>",
		Short: "List the members of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
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

			members, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.Membership]) error {
				return client.Memberships(cmd.Context(), projectID, redmine.Options{All: true}, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}

			return list(p, members, table.Row{"ID", "Member", "Roles"},
				func(m models.Membership) table.Row {
					member := refName(m.User)
					if !m.User.ID.IsSet() {
						member = refName(m.Group) + " (group)"
					}
					return table.Row{m.ID, member, refNames(m.Roles)}
				})
		},
	}
}
