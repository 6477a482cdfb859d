// Package interaction implements engine-driven dialogs: questions, login
// prompts, progress bars and non-blocking error reports.
//
// # Records
//
// The engine owns a Record for the lifetime of one interaction and posts it
// with an Action (New, Update, Hide, Destroy) in an envelope. Status only
// moves forward (Pending, then Answered or Hidden, then Destroyed), so a late
// or duplicated action cannot undo an answer or resurrect a destroyed record.
// The Handle is zero until the UI has built the dialog and is written once.
//
// # Manager
//
// Manager runs on the UI loop and applies actions to the dialogs it built.
// Actions for a record the UI has not seen yet, or has already torn down, are
// logged at debug level and dropped. A non-blocking error still on screen when
// its record is destroyed stays up as a lingering dialog until Dismiss or
// Shutdown.
package interaction
