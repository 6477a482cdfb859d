// Package ui is the terminal dialog provider: a Bubble Tea program that owns
// every dialog the engine can ask for.
//
// # Layout
//
// The screen is a header, the visible singleton panels in stacking order, the
// visible interaction dialogs (newest last, and focused), and a footer with the
// last routed command's status and short key hints. The help overlay and the
// file picker modal replace the whole screen while they are open.
//
// # Event Flow
//
//  1. The engine posts request.Envelope values to the mailbox; the mailbox
//     drains them into the program with Program.Send.
//  2. Update hands envelopes to provider.Dispatch, which toggles singleton
//     panels through the registry or applies interaction updates.
//  3. Keys activate router tokens. The router runs engine work as a tea.Cmd
//     and returns a router.ResultMsg, whose Follow message is fed back into
//     Update (a picker result, a dialog envelope, or quit).
//  4. ModalPicker blocks the calling command goroutine while the picker modal
//     runs on the UI loop.
//  5. A tick refreshes visible panels from the engine snapshot and the log
//     backlog.
//
// Teardown (quit or ctrl+c) closes every panel and interaction dialog and then
// the mailbox, so late engine posts fail instead of reaching a dead program.
//
// # Key Bindings
//
//   - o/a/A/I/d/D: Open files, add to playlist or library, import, directories
//   - p/m/P/i/x: Playlist, Messages, Preferences, Stream info, Extended
//   - S: Switch interface; 1-9: Toggle a discovery module
//   - enter/n/O/esc: Answer the focused question; tab moves between fields
//   - T: Cycle theme; h/?: Help; q or ctrl+c: Quit
package ui
