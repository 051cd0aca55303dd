// Package tui renders batch progress with Bubble Tea.
package tui

import "github.com/imamik/hsmv/internal/util/async"

// ItemDoneMsg reports one finished batch item.
type ItemDoneMsg struct {
	Name string
	Err  error
}

// BatchDoneMsg signals that the batch is complete.
type BatchDoneMsg struct {
	Summary async.Summary
}
