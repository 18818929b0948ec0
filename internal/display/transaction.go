package display

import (
	"errors"

	"lantern/internal/channel"
)

var errCommitted = errors.New("transaction already committed")

// Transaction queues host operations; nothing changes until Commit.
type Transaction struct {
	host      *Host
	ops       []Op
	committed bool
}

func (t *Transaction) add(kind OpKind, c channel.Channel) *Transaction {
	t.ops = append(t.ops, Op{Kind: kind, Channel: c})
	return t
}

// Attach adds c to the slot, visible.
func (t *Transaction) Attach(c channel.Channel) *Transaction { return t.add(OpAttach, c) }

// Show un-hides an attached channel.
func (t *Transaction) Show(c channel.Channel) *Transaction { return t.add(OpShow, c) }

// Hide hides an attached channel without removing it.
func (t *Transaction) Hide(c channel.Channel) *Transaction { return t.add(OpHide, c) }

// Remove detaches c.
func (t *Transaction) Remove(c channel.Channel) *Transaction { return t.add(OpRemove, c) }

// Replace detaches everything and attaches c as the only, visible channel.
func (t *Transaction) Replace(c channel.Channel) *Transaction { return t.add(OpReplace, c) }

// Apply commits ops as a single batch.
func (h *Host) Apply(ops ...Op) error {
	tx := h.Begin()
	tx.ops = append(tx.ops, ops...)
	return tx.Commit()
}

// Commit applies every queued operation or none of them.
func (t *Transaction) Commit() error {
	if t.committed {
		return errCommitted
	}
	t.committed = true
	return t.host.commit(t.ops)
}
