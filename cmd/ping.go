package cmd

import (
	"fmt"

	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that Redmine is reachable with the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			changed := make(chan redmine.ConnectionState, 1)
			client.OnConnectionChanged(func(state redmine.ConnectionState) {
				select {
				case changed <- state:
				default:
				}
			})
			if err := client.CheckConnection(cmd.Context()); err != nil {
				return err
			}

			select {
			case state := <-changed:
				if state != redmine.ConnectionAccessible {
					return fmt.Errorf("%s is %s", client.URL(), state)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", client.URL(), state)
				return nil
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
}
