package cmd

import (
	"fmt"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Long:  `List users. Requires administrator privileges on most Redmine instances.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetInt("status")
			name, _ := cmd.Flags().GetString("name")
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

			filter := redmine.UserFilter{Status: status, Name: name}
			users, err := awaitList(cmd.Context(), func(cb redmine.ListCallback[models.User]) error {
				return client.Users(cmd.Context(), redmine.Options{Filter: filter.String(), All: all}, cb)
			})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return list(p, users, table.Row{"ID", "Login", "Name", "Mail", "Last login"},
				func(u models.User) table.Row {
					return table.Row{u.ID, u.Login, u.FullName(), u.Mail, formatTime(u.LastLoginOn)}
				})
		},
	}
	cmd.Flags().Int("status", 0, "1 active, 2 registered, 3 locked")
	cmd.Flags().String("name", "", "match login, name or mail")
	cmd.Flags().Bool("all", false, "fetch every page")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
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

			user, err := awaitItem(cmd.Context(), func(cb redmine.ItemCallback[models.User]) error {
				return client.CurrentUser(cmd.Context(), cb)
			})
			if err != nil {
				return fmt.Errorf("failed to fetch current user: %w", err)
			}

			return detail(p, user, [][2]string{
				{"ID", user.ID.String()},
				{"Login", user.Login},
				{"Name", user.FullName()},
				{"Mail", user.Mail},
				{"Created", formatTime(user.CreatedOn)},
				{"Last login", formatTime(user.LastLoginOn)},
			})
		},
	}
}
