// Package engine defines the media engine collaborators the dialog bridge
// calls into, plus an in-memory implementation.
//
// # Overview
//
// The UI never reaches into engine internals. Everything it needs is exposed
// through three narrow interfaces:
//
//   - Playlist: enqueue items, import playlist files, add directory inputs,
//     and read a snapshot for rendering
//   - Discovery: load and unload service discovery modules by name
//   - Settings: the user home directory and string-valued settings
//
// Engine combines them. Router actions and picker continuations receive an
// Engine and run off the UI loop inside a tea.Cmd, so implementations may block
// briefly but must honour context cancellation.
//
// # Memory
//
// Memory is a goroutine-safe snapshot store in the same shape as a poller-fed
// state cache: many writers (engine goroutines, router commands) and one
// frequent reader (the UI idle tick). Writes take the write lock, Snapshot
// takes the read lock and returns deep copies so the UI can hold a snapshot
// while the engine keeps mutating.
//
//	engine goroutines          UI loop (idle tick)
//	Add / Import / AddInput    Snapshot()
//	       │                        ▲
//	       └──────► Memory ─────────┘
//	              (RWMutex)
//
// Snapshot.Version increases on every mutation; panels compare versions to
// skip re-seeding when nothing changed.
package engine
