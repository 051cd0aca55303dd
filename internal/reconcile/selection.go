package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/hsmv/internal/platform/headscale"
)

var (
	// ErrSelectorRequired is returned when neither an id nor a name is given.
	ErrSelectorRequired = errors.New("either --id or --name must be provided")
	// ErrSelectorConflict is returned when both an id and a name are given.
	ErrSelectorConflict = errors.New("cannot provide both --id and --name")
	// ErrInvalidID is returned when an id is not a positive integer.
	ErrInvalidID = errors.New("--id must be a positive integer")
	// ErrNodeNotFound is returned when no node matches the selector.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUserNotFound is returned when no user matches the selector.
	ErrUserNotFound = errors.New("user not found")
)

// Selector picks one node or user by id or by name.
type Selector struct {
	ID   string
	Name string
}

// Validate checks that exactly one of ID and Name is set and that an ID is
// numeric, as coordinator ids are.
func (s Selector) Validate() error {
	id, name := strings.TrimSpace(s.ID), strings.TrimSpace(s.Name)
	switch {
	case id == "" && name == "":
		return ErrSelectorRequired
	case id != "" && name != "":
		return ErrSelectorConflict
	case id != "":
		if n, err := strconv.ParseUint(id, 10, 64); err != nil || n == 0 {
			return fmt.Errorf("%w, got %q", ErrInvalidID, id)
		}
	}
	return nil
}

func (s Selector) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "ID " + s.ID
}

// ResolveNode finds the selected node in a snapshot. A name matches the
// given name or the hostname.
func ResolveNode(state *headscale.State, sel Selector) (headscale.Node, error) {
	if err := sel.Validate(); err != nil {
		return headscale.Node{}, err
	}

	var (
		node headscale.Node
		ok   bool
	)
	if sel.Name != "" {
		node, ok = state.NodeByName(strings.TrimSpace(sel.Name))
	} else {
		node, ok = state.NodeByID(headscale.ID(strings.TrimSpace(sel.ID)))
	}
	if !ok {
		return headscale.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, sel)
	}
	return node, nil
}

// ResolveUser returns the id of the selected user. An id is used as given
// without a lookup.
func ResolveUser(rc *Context, sel Selector) (headscale.ID, error) {
	if err := sel.Validate(); err != nil {
		return "", err
	}
	if id := strings.TrimSpace(sel.ID); id != "" {
		return headscale.ID(id), nil
	}

	name := strings.TrimSpace(sel.Name)
	user, err := rc.Headscale.UserByName(rc, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", name, err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	return user.ID, nil
}
