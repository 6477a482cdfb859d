// Package app is the composition root of the dialogs binary.
//
// Run loads the config, opens the log sink, builds the metrics registry (and
// its optional /metrics endpoint), the in-memory engine, the mailbox and the
// Bubble Tea model, then blocks in the program until the user quits or the
// context is cancelled.
//
// # Data Flow
//
//	engine goroutines ──Post──> mailbox ──Program.Send──> ui.Model.Update
//	                                                        │
//	ui.Model ──tea.Cmd──> router / picker ──ResultMsg──────┘
//
// The mailbox delivery goroutine is the only sender of engine envelopes into
// the program. Teardown runs after the program returns, closing every dialog
// and then the mailbox so later posts fail with mailbox.ErrClosed.
//
// # Simulator
//
// With --simulate, StartSimulator plays the engine side of the protocol in a
// loop: it seeds the playlist, toggles the playlist panel, runs a cancellable
// progress dialog, asks a question and waits for the answer, and reports a
// non-blocking error that stays on screen after its record is destroyed. A
// full mailbox makes it back off exponentially; a closed one stops it.
package app
