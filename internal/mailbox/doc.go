// Package mailbox carries request envelopes from engine goroutines to the UI
// loop.
//
// # Delivery
//
// Post may be called from any goroutine, including the UI loop itself. It
// never blocks: the envelope is stamped with the next sequence number and
// queued, and the Run goroutine is woken. Run hands envelopes to its deliver
// func one at a time in post order, so envelopes from one sender are
// seen in the order that sender posted them.
//
// # Failure
//
// Post reports every envelope it does not accept:
//
//   - ErrClosed after Close; the UI has gone away
//   - ErrFull when Capacity envelopes are already waiting
//
// Close discards whatever is still queued and counts it as discarded.
package mailbox
