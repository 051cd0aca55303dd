package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/util/async"
	"github.com/imamik/hsmv/internal/util/filter"
	"github.com/imamik/hsmv/internal/util/naming"
)

const (
	phaseRelayAdd    = "relay.add"
	phaseRelayDelete = "relay.delete"
)

// Batch kinds, used as metric labels.
const (
	KindRelayRegister    = "relay_register"
	KindRelayDelete      = "relay_delete"
	KindConnectionCreate = "connection_create"
	KindConnectionDelete = "connection_delete"
)

// RelayListing is one registered relay peer.
type RelayListing struct {
	ID   headscale.ID `json:"id" yaml:"id"`
	Name string       `json:"name" yaml:"name"`
	// Hostname is the relay's name in the Mullvad catalog.
	Hostname  string             `json:"hostname" yaml:"hostname"`
	Endpoints []string           `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Location  headscale.Location `json:"location" yaml:"location"`
}

// ListRelays returns the relay peers with their decoded location. Peers with
// unreadable metadata are listed with an empty location.
func ListRelays(rc *Context) ([]RelayListing, error) {
	state, err := rc.Headscale.State(rc)
	if err != nil {
		return nil, err
	}

	var out []RelayListing
	for _, p := range state.RelayPeers() {
		loc, _ := p.Location()
		out = append(out, RelayListing{
			ID:        p.ID,
			Name:      p.Name,
			Hostname:  naming.RelayHostname(p.Name),
			Endpoints: p.Endpoints,
			Location:  loc,
		})
	}
	return out, nil
}

// AddRelays registers every catalog relay passing the country filter that is
// not yet a relay peer, owned by user.
func AddRelays(rc *Context, user headscale.ID, countries filter.Countries) (*Report, error) {
	emit(rc.Observer, phaseRelayAdd, EventPhaseStarted, "Fetching Mullvad relays")

	var (
		catalog *mullvad.Catalog
		state   *headscale.State
	)
	err := async.RunParallel(rc, []async.Task{
		{Name: "mullvad relays", Func: func(ctx context.Context) error {
			var err error
			catalog, err = rc.Mullvad.Relays(ctx)
			return err
		}},
		{Name: "headscale state", Func: func(ctx context.Context) error {
			var err error
			state, err = rc.Headscale.State(ctx)
			return err
		}},
	})
	if err != nil {
		return nil, err
	}

	plan := PlanRelayRegistrations(catalog.Relays(), state.Peers, user, countries)
	for _, s := range plan.Invalid {
		logSkipped(rc.Observer, phaseRelayAdd, s.Name, s.Reason)
	}

	report := &Report{Planned: len(plan.Requests), Skipped: plan.Invalid, DryRun: rc.DryRun}
	if len(plan.Requests) == 0 {
		emit(rc.Observer, phaseRelayAdd, EventPlanEmpty, "No new relays to register")
		return report, nil
	}

	if rc.DryRun {
		for _, req := range plan.Requests {
			logPlanned(rc.Observer, phaseRelayAdd, req.Name, "would register relay", map[string]string{
				"endpoints": fmt.Sprint(req.Endpoints),
			})
		}
		return report, nil
	}

	report.Batches = append(report.Batches, run(rc, async.Batch[headscale.RegisterPeerRequest]{
		Kind:   KindRelayRegister,
		Title:  fmt.Sprintf("Registering %d relays", len(plan.Requests)),
		Items:  plan.Requests,
		Name:   func(r headscale.RegisterPeerRequest) string { return r.Name },
		Action: rc.Headscale.RegisterPeer,
	}))

	rc.Observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phaseRelayAdd,
		Message: "Relays registered",
		Fields: map[string]string{
			"existing": strconv.Itoa(plan.Existing),
			"skipped":  strconv.Itoa(len(plan.Invalid)),
		},
	})
	return report, nil
}

// DeleteRelays removes relay peers passing the country filter, deleting the
// connections that reference them first.
func DeleteRelays(rc *Context, countries filter.Countries) (*Report, error) {
	state, err := rc.Headscale.State(rc)
	if err != nil {
		return nil, err
	}

	plan := PlanRelayDeletions(state, countries)
	for _, s := range plan.Unreadable {
		logSkipped(rc.Observer, phaseRelayDelete, s.Name, s.Reason)
	}

	report := &Report{
		Planned: len(plan.Connections) + len(plan.Peers),
		Skipped: plan.Unreadable,
		DryRun:  rc.DryRun,
	}
	if len(plan.Peers) == 0 {
		emit(rc.Observer, phaseRelayDelete, EventPlanEmpty, "No relays to delete")
		return report, nil
	}

	if rc.DryRun {
		for _, c := range plan.Connections {
			logPlanned(rc.Observer, phaseRelayDelete, naming.ConnectionName(c.NodeID.String(), c.PeerID.String()), "would delete connection", nil)
		}
		for _, p := range plan.Peers {
			logPlanned(rc.Observer, phaseRelayDelete, p.Name, "would delete relay", nil)
		}
		return report, nil
	}

	if len(plan.Connections) > 0 {
		report.Batches = append(report.Batches, run(rc, async.Batch[headscale.Connection]{
			Kind:  KindConnectionDelete,
			Title: fmt.Sprintf("Deleting %d connections", len(plan.Connections)),
			Items: plan.Connections,
			Name: func(c headscale.Connection) string {
				return naming.ConnectionName(c.NodeID.String(), c.PeerID.String())
			},
			Action: func(ctx context.Context, c headscale.Connection) error {
				return rc.Headscale.DeleteConnection(ctx, c.NodeID, c.PeerID)
			},
		}))
	}

	report.Batches = append(report.Batches, run(rc, async.Batch[headscale.Peer]{
		Kind:  KindRelayDelete,
		Title: fmt.Sprintf("Deleting %d relays", len(plan.Peers)),
		Items: plan.Peers,
		Name:  func(p headscale.Peer) string { return p.Name },
		Action: func(ctx context.Context, p headscale.Peer) error {
			return rc.Headscale.DeletePeer(ctx, p.ID)
		},
	}))
	return report, nil
}
