// Package request defines the envelopes the engine posts to ask the UI for a
// dialog.
package request

import "fmt"

// Kind identifies the dialog or action an envelope asks the UI to perform.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenFile
	KindOpenDisc
	KindOpenNetwork
	KindOpenCapture
	KindPlaylist
	KindMessages
	KindPreferences
	KindPopupMenu
	KindAudioPopupMenu
	KindVideoPopupMenu
	KindMiscPopupMenu
	KindStreamInfo
	KindInteraction
	KindBookmarks
	KindVLM
	KindExtended
	KindWizard
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindOpenFile:       "open-file",
	KindOpenDisc:       "open-disc",
	KindOpenNetwork:    "open-network",
	KindOpenCapture:    "open-capture",
	KindPlaylist:       "playlist",
	KindMessages:       "messages",
	KindPreferences:    "preferences",
	KindPopupMenu:      "popup-menu",
	KindAudioPopupMenu: "audio-popup-menu",
	KindVideoPopupMenu: "video-popup-menu",
	KindMiscPopupMenu:  "misc-popup-menu",
	KindStreamInfo:     "stream-info",
	KindInteraction:    "interaction",
	KindBookmarks:      "bookmarks",
	KindVLM:            "vlm",
	KindExtended:       "extended",
	KindWizard:         "wizard",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsPopup reports whether k is one of the popup menu kinds.
func (k Kind) IsPopup() bool {
	switch k {
	case KindPopupMenu, KindAudioPopupMenu, KindVideoPopupMenu, KindMiscPopupMenu:
		return true
	}
	return false
}

// IsOpen reports whether k is one of the open-media dialog kinds.
func (k Kind) IsOpen() bool {
	switch k {
	case KindOpenFile, KindOpenDisc, KindOpenNetwork, KindOpenCapture:
		return true
	}
	return false
}

// Args is the simple argument bundle carried by non-interaction envelopes.
type Args map[string]string

// Envelope is one UI request travelling from an engine goroutine to the UI
// loop. Seq is stamped by the mailbox when the envelope is accepted.
type Envelope struct {
	Kind    Kind
	Payload any
	Sender  string
	Seq     uint64
}

// New builds an envelope without payload.
func New(kind Kind) Envelope {
	return Envelope{Kind: kind}
}

// WithPayload builds an envelope carrying payload.
func WithPayload(kind Kind, payload any) Envelope {
	return Envelope{Kind: kind, Payload: payload}
}

// From returns a copy of e labelled with sender.
func (e Envelope) From(sender string) Envelope {
	e.Sender = sender
	return e
}

// Args returns the payload as an argument bundle, or nil.
func (e Envelope) Args() Args {
	if args, ok := e.Payload.(Args); ok {
		return args
	}
	return nil
}

func (e Envelope) String() string {
	if e.Sender == "" {
		return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
	}
	return fmt.Sprintf("#%d %s from %s", e.Seq, e.Kind, e.Sender)
}
