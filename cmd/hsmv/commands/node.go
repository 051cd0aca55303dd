package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/hsmv/cmd/hsmv/handlers"
	"github.com/imamik/hsmv/internal/reconcile"
)

// Node returns the node command group.
func Node(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage relay access of tailnet nodes",
	}

	cmd.AddCommand(nodeList(opts))
	cmd.AddCommand(nodeAdd(opts))
	cmd.AddCommand(nodeDelete(opts))

	return cmd
}

func nodeList(opts *handlers.Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all nodes and their VPN access status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.NodeList(cmd.Context(), *opts, output)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func nodeAdd(opts *handlers.Options) *cobra.Command {
	var sel reconcile.Selector

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a node to Mullvad and create relay connections",
		Long: `Add authorizes the node's WireGuard key with the Mullvad account and connects
the node to every relay peer it is not yet connected to.

Example:
  hsmv node add --name laptop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.NodeAdd(cmd.Context(), *opts, sel)
		},
	}

	addSelectorFlags(cmd, &sel, "The ID of the node to add", "The name of the node to add")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be connected without changing anything")

	return cmd
}

func nodeDelete(opts *handlers.Options) *cobra.Command {
	var sel reconcile.Selector

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete relay connections for a specific node",
		Long: `Delete removes the node's connections to Mullvad relay peers. Connections to
other WireGuard-only peers are left alone.

The device stays registered on the Mullvad account and must be removed at
https://mullvad.net/account/devices.

Example:
  hsmv node delete --id 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.NodeDelete(cmd.Context(), *opts, sel)
		},
	}

	addSelectorFlags(cmd, &sel, "The ID of the node to delete connections for", "The name of the node to delete connections for")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without changing anything")

	return cmd
}

func addSelectorFlags(cmd *cobra.Command, sel *reconcile.Selector, idUsage, nameUsage string) {
	cmd.Flags().StringVarP(&sel.ID, "id", "i", "", idUsage)
	cmd.Flags().StringVarP(&sel.Name, "name", "n", "", nameUsage)
	cmd.MarkFlagsMutuallyExclusive("id", "name")
	cmd.MarkFlagsOneRequired("id", "name")
}
