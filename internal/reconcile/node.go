package reconcile

import (
	"context"
	"fmt"

	"github.com/imamik/hsmv/internal/keys"
	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/util/async"
	"github.com/imamik/hsmv/internal/util/naming"
)

const (
	phaseNodeAdd    = "node.add"
	phaseNodeDelete = "node.delete"
)

// DevicesURL is where devices registered on a Mullvad account are managed.
const DevicesURL = "https://mullvad.net/account/devices"

// NodeAccess is one tailnet node and its relay access.
type NodeAccess struct {
	ID   headscale.ID `json:"id" yaml:"id"`
	Name string       `json:"name" yaml:"name"`
	User string       `json:"user" yaml:"user"`
	// Connected counts relay peers the node is connected to.
	Connected int `json:"connected" yaml:"connected"`
	Relays    int `json:"relays" yaml:"relays"`
	// Access is true when the node is connected to every relay peer.
	Access bool `json:"access" yaml:"access"`
}

// ListNodeAccess returns every node with its access status.
func ListNodeAccess(rc *Context) ([]NodeAccess, error) {
	state, err := rc.Headscale.State(rc)
	if err != nil {
		return nil, err
	}

	relays := state.RelayPeers()
	var out []NodeAccess
	for _, n := range state.Nodes {
		out = append(out, NodeAccess{
			ID:        n.ID,
			Name:      n.DisplayName(),
			User:      n.User.Name,
			Connected: len(PlanNodeDisconnections(state, n.ID)),
			Relays:    len(relays),
			Access:    HasFullAccess(state, n.ID),
		})
	}
	return out, nil
}

// ConnectNode authorizes the selected node's key with Mullvad and connects
// the node to every relay peer it is not yet connected to.
func ConnectNode(rc *Context, sel Selector) (*Report, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	state, err := rc.Headscale.State(rc)
	if err != nil {
		return nil, err
	}
	node, err := ResolveNode(state, sel)
	if err != nil {
		return nil, err
	}

	providerKey, err := keys.NodeToProviderKey(node.NodeKey)
	if err != nil {
		return nil, fmt.Errorf("couldn't convert node key of %s to a WireGuard key: %w", node.DisplayName(), err)
	}

	report := &Report{DryRun: rc.DryRun}
	if rc.DryRun {
		reqs := PlanNodeConnections(state, node.ID, mullvad.MasqueradeAddrs{})
		report.Planned = len(reqs)
		logPlanned(rc.Observer, phaseNodeAdd, node.DisplayName(), "would authorize key with Mullvad", map[string]string{
			"publicKey": providerKey.String(),
		})
		for _, r := range reqs {
			logPlanned(rc.Observer, phaseNodeAdd, naming.ConnectionName(r.NodeID.String(), r.PeerID.String()), "would create connection", nil)
		}
		return report, nil
	}

	rc.Observer.Event(Event{
		Type:     EventPhaseStarted,
		Phase:    phaseNodeAdd,
		Resource: node.DisplayName(),
		Message:  "Adding node to Mullvad",
	})
	addrs, err := rc.Mullvad.Authorize(rc, providerKey.String())
	if err != nil {
		return nil, fmt.Errorf("failed to add node %s to Mullvad: %w", node.DisplayName(), err)
	}

	reqs := PlanNodeConnections(state, node.ID, addrs)
	report.Planned = len(reqs)
	if len(reqs) == 0 {
		emit(rc.Observer, phaseNodeAdd, EventPlanEmpty, "All connections are already up-to-date")
		return report, nil
	}

	report.Batches = append(report.Batches, run(rc, async.Batch[headscale.CreateConnectionRequest]{
		Kind:  KindConnectionCreate,
		Title: fmt.Sprintf("Creating %d connections", len(reqs)),
		Items: reqs,
		Name: func(r headscale.CreateConnectionRequest) string {
			return naming.ConnectionName(r.NodeID.String(), r.PeerID.String())
		},
		Action: rc.Headscale.CreateConnection,
	}))
	return report, nil
}

// DisconnectNode deletes the selected node's connections to relay peers and
// reminds the operator to remove the device from the Mullvad account.
func DisconnectNode(rc *Context, sel Selector) (*Report, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	state, err := rc.Headscale.State(rc)
	if err != nil {
		return nil, err
	}
	node, err := ResolveNode(state, sel)
	if err != nil {
		return nil, err
	}

	conns := PlanNodeDisconnections(state, node.ID)
	report := &Report{Planned: len(conns), DryRun: rc.DryRun}
	if len(conns) == 0 {
		emit(rc.Observer, phaseNodeDelete, EventPlanEmpty, "No connections to delete")
		return report, nil
	}

	if rc.DryRun {
		for _, c := range conns {
			logPlanned(rc.Observer, phaseNodeDelete, naming.ConnectionName(c.NodeID.String(), c.PeerID.String()), "would delete connection", nil)
		}
		return report, nil
	}

	rc.Observer.Event(Event{
		Type:     EventPhaseStarted,
		Phase:    phaseNodeDelete,
		Resource: node.DisplayName(),
		Message:  "Deleting connections",
	})
	report.Batches = append(report.Batches, run(rc, async.Batch[headscale.Connection]{
		Kind:  KindConnectionDelete,
		Title: fmt.Sprintf("Deleting %d connections", len(conns)),
		Items: conns,
		Name:  func(c headscale.Connection) string { return c.PeerID.String() },
		Action: func(ctx context.Context, c headscale.Connection) error {
			return rc.Headscale.DeleteConnection(ctx, c.NodeID, c.PeerID)
		},
	}))

	remindDeviceRemoval(rc.Observer, node)
	return report, nil
}

func remindDeviceRemoval(o Observer, node headscale.Node) {
	fields := map[string]string{"url": DevicesURL}
	if k, err := keys.ProviderKeyString(node.NodeKey); err == nil {
		fields["publicKey"] = k
	}
	o.Event(Event{
		Type:     EventManualAction,
		Phase:    phaseNodeDelete,
		Resource: node.DisplayName(),
		Message:  "You must manually remove this device from your Mullvad account",
		Fields:   fields,
	})
}
