package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/hsmv/cmd/hsmv/handlers"
)

// Relay returns the relay command group.
func Relay(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Manage Mullvad relays in Headscale",
	}

	cmd.AddCommand(relayList(opts))
	cmd.AddCommand(relayAdd(opts))
	cmd.AddCommand(relayDelete(opts))

	return cmd
}

func relayList(opts *handlers.Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all Mullvad relays in Headscale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RelayList(cmd.Context(), *opts, output)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func relayAdd(opts *handlers.Options) *cobra.Command {
	var args handlers.RelayAddArgs

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add Mullvad relays to Headscale",
		Long: `Add registers every Mullvad WireGuard relay that is not yet in Headscale
as a WireGuard-only peer owned by the given user.

Relays already registered (by name) are skipped, so the command can be
re-run safely. Without --countries every relay is registered, which asks
for confirmation unless --yes is given.

Example:
  hsmv relay add --name alice --countries se,de`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.CountriesGiven = cmd.Flags().Changed("countries")
			return handlers.RelayAdd(cmd.Context(), *opts, args)
		},
	}

	cmd.Flags().StringVarP(&args.User.ID, "id", "i", "", "Headscale user ID to create relays with")
	cmd.Flags().StringVarP(&args.User.Name, "name", "n", "", "Headscale user name to create relays with")
	cmd.MarkFlagsMutuallyExclusive("id", "name")
	cmd.MarkFlagsOneRequired("id", "name")
	cmd.Flags().StringVarP(&args.Countries, "countries", "c", "", "Comma-separated list of country codes to add")
	cmd.Flags().BoolVarP(&args.Yes, "yes", "y", false, "Skip the confirmation when adding every relay")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be registered without changing anything")

	return cmd
}

func relayDelete(opts *handlers.Options) *cobra.Command {
	var args handlers.RelayDeleteArgs

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete Mullvad relays from Headscale",
		Long: `Delete removes Mullvad relay peers from Headscale, optionally only those in
the given countries. Connections to the removed relays are deleted first.

With --countries, relays whose stored location cannot be read are kept.

Example:
  hsmv relay delete --countries us`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.CountriesGiven = cmd.Flags().Changed("countries")
			return handlers.RelayDelete(cmd.Context(), *opts, args)
		},
	}

	cmd.Flags().StringVarP(&args.Countries, "countries", "c", "", "Comma-separated list of country codes to delete")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without changing anything")

	return cmd
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", "table", "Output format: table, json or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
}
