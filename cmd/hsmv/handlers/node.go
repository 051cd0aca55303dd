package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/hsmv/internal/reconcile"
	"github.com/imamik/hsmv/internal/ui"
)

// NodeList prints every tailnet node with its relay access status.
func NodeList(ctx context.Context, opts Options, output string) error {
	format, err := ui.ParseFormat(output)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts, false)
	if err != nil {
		return err
	}

	nodes, err := reconcile.ListNodeAccess(s.rc)
	if err != nil {
		return explain(err)
	}

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID.String(),
			n.Name,
			n.User,
			fmt.Sprintf("%d/%d", n.Connected, n.Relays),
			ui.Check(n.Access),
		})
	}

	if format == ui.FormatTable && len(rows) == 0 {
		fmt.Fprintln(stdout, ui.InfoMsg("No nodes found"))
		return nil
	}
	return ui.Render(stdout, format, ui.Listing{
		Title:   fmt.Sprintf("Nodes (%d)", len(nodes)),
		Headers: []string{"ID", "Name", "User", "Relays", "VPN Access"},
		Rows:    rows,
		Data:    nodes,
	})
}

// NodeAdd authorizes a node with Mullvad and connects it to every relay.
func NodeAdd(ctx context.Context, opts Options, sel reconcile.Selector) error {
	if err := sel.Validate(); err != nil {
		return err
	}

	s, err := openSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := reconcile.ConnectNode(s.rc, sel)
	if err != nil {
		return explain(err)
	}
	return s.finish("connections", report)
}

// NodeDelete removes a node's relay connections.
func NodeDelete(ctx context.Context, opts Options, sel reconcile.Selector) error {
	if err := sel.Validate(); err != nil {
		return err
	}

	s, err := openSession(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := reconcile.DisconnectNode(s.rc, sel)
	if err != nil {
		return explain(err)
	}
	return s.finish("connection deletions", report)
}
