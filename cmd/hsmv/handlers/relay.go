package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/hsmv/internal/reconcile"
	"github.com/imamik/hsmv/internal/ui"
	"github.com/imamik/hsmv/internal/util/filter"
)

// RelayAddArgs are the arguments of relay add.
type RelayAddArgs struct {
	User      reconcile.Selector
	Countries string
	// CountriesGiven is set when --countries was passed, even if empty.
	CountriesGiven bool
	Yes            bool
}

// RelayDeleteArgs are the arguments of relay delete.
type RelayDeleteArgs struct {
	Countries      string
	CountriesGiven bool
}

// RelayList prints every relay peer registered in Headscale.
func RelayList(ctx context.Context, opts Options, output string) error {
	format, err := ui.ParseFormat(output)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts, false)
	if err != nil {
		return err
	}

	relays, err := reconcile.ListRelays(s.rc)
	if err != nil {
		return explain(err)
	}

	rows := make([][]string, 0, len(relays))
	for _, r := range relays {
		rows = append(rows, []string{
			r.ID.String(),
			r.Hostname,
			r.Location.Country,
			r.Location.City,
			strings.Join(r.Endpoints, " "),
		})
	}

	if format == ui.FormatTable && len(rows) == 0 {
		fmt.Fprintln(stdout, ui.InfoMsg("No Mullvad relays registered"))
		return nil
	}
	return ui.Render(stdout, format, ui.Listing{
		Title:   fmt.Sprintf("Mullvad relays (%d)", len(relays)),
		Headers: []string{"ID", "Relay", "Country", "City", "Endpoints"},
		Rows:    rows,
		Data:    relays,
	})
}

// RelayAdd registers Mullvad relays that are missing from Headscale.
//
// Registering the full catalog takes a while, so it needs confirmation
// unless a country filter or --yes is given.
func RelayAdd(ctx context.Context, opts Options, args RelayAddArgs) error {
	if err := args.User.Validate(); err != nil {
		return err
	}
	countries, err := filter.Parse(args.Countries, args.CountriesGiven)
	if err != nil {
		return err
	}

	if !countries.Active() && !args.Yes && !opts.DryRun {
		ok, err := confirm(ctx,
			"This will fetch all Mullvad relays and may take a while. Do you want to continue?",
			"Use --countries to limit the relays to specific countries.")
		if err != nil {
			return err
		}
		if !ok {
			return ui.ErrAborted
		}
	}

	s, err := openSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.close()

	user, err := reconcile.ResolveUser(s.rc, args.User)
	if err != nil {
		return explain(err)
	}

	report, err := reconcile.AddRelays(s.rc, user, countries)
	if err != nil {
		return explain(err)
	}
	return s.finish("relay registrations", report)
}

// RelayDelete removes Mullvad relays, optionally limited to countries.
//
// A --countries value without any code is rejected rather than read as
// "every country".
func RelayDelete(ctx context.Context, opts Options, args RelayDeleteArgs) error {
	countries, err := filter.Parse(args.Countries, args.CountriesGiven)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := reconcile.DeleteRelays(s.rc, countries)
	if err != nil {
		return explain(err)
	}
	return s.finish("deletions", report)
}
