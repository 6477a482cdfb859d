package interaction

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/five82/dialogs/internal/request"
)

// Action tells the UI what to do with a record's dialog.
type Action int

const (
	ActionNew Action = iota
	ActionUpdate
	ActionHide
	ActionDestroy
)

func (a Action) String() string {
	switch a {
	case ActionNew:
		return "new"
	case ActionUpdate:
		return "update"
	case ActionHide:
		return "hide"
	case ActionDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Status is the outcome of an interaction as seen by the engine.
type Status int32

const (
	StatusPending Status = iota
	StatusAnswered
	StatusHidden
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAnswered:
		return "answered"
	case StatusHidden:
		return "hidden"
	case StatusDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// rank orders statuses; a record never moves to a lower rank.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusAnswered, StatusHidden:
		return 1
	default:
		return 2
	}
}

// Flags describe the flavour of an interaction.
type Flags uint32

const (
	FlagNonBlockingError Flags = 1 << iota
	FlagYesNoCancel
	FlagLoginPassword
	FlagProgress
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Handle is an opaque reference to a UI-owned dialog. The zero Handle means
// no dialog has been created. Engine code may store and compare handles but
// has no way to reach the dialog behind one.
type Handle uint64

func (h Handle) IsZero() bool { return h == 0 }

// Content is the engine-supplied data a dialog renders.
type Content struct {
	Title           string
	Description     string
	DefaultButton   string
	AlternateButton string
	OtherButton     string
	Progress        float64 // 0..100, used with FlagProgress
	TimeToGo        time.Duration
}

// Button identifies which choice the user made.
type Button int

const (
	ButtonNone Button = iota
	ButtonDefault
	ButtonAlternate
	ButtonOther
	ButtonCancel
)

func (b Button) String() string {
	switch b {
	case ButtonDefault:
		return "default"
	case ButtonAlternate:
		return "alternate"
	case ButtonOther:
		return "other"
	case ButtonCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Answer carries the user's response.
type Answer struct {
	Button   Button
	Login    string
	Password string
}

// Record is shared between the engine and the UI for the lifetime of one
// interaction. Status and Handle are the only fields written across the
// goroutine boundary and both are atomic.
type Record struct {
	ID    uuid.UUID
	Flags Flags

	status atomic.Int32
	handle atomic.Uint64

	mu      sync.RWMutex
	content Content
	answer  Answer
}

// NewRecord creates a pending record.
func NewRecord(flags Flags, content Content) *Record {
	r := &Record{ID: uuid.New(), Flags: flags, content: content}
	r.status.Store(int32(StatusPending))
	return r
}

// Status returns the current status.
func (r *Record) Status() Status {
	return Status(r.status.Load())
}

// Handle returns the dialog handle, zero until the UI has processed New.
func (r *Record) Handle() Handle {
	return Handle(r.handle.Load())
}

// Content returns a copy of the current content.
func (r *Record) Content() Content {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// SetContent replaces the content. Engines call this before posting Update.
func (r *Record) SetContent(c Content) {
	r.mu.Lock()
	r.content = c
	r.mu.Unlock()
}

// Answer returns the stored answer and whether the record has been answered.
func (r *Record) Answer() (Answer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.answer, r.answer.Button != ButtonNone
}

// Respond stores a and moves the record to Answered. It reports false when
// the record has already been destroyed. Engines may call it to pre-answer an
// interaction (for example on timeout) before the UI has shown it.
func (r *Record) Respond(a Answer) bool {
	if a.Button == ButtonNone {
		a.Button = ButtonDefault
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.advance(StatusAnswered) {
		return false
	}
	r.answer = a
	return true
}

// Envelope wraps the record and action into an interaction envelope.
func (r *Record) Envelope(action Action) request.Envelope {
	return request.WithPayload(request.KindInteraction, Request{Record: r, Action: action})
}

func (r *Record) String() string {
	return fmt.Sprintf("%s(%s)", r.ID.String()[:8], r.Status())
}

// advance moves the status to s unless that would lower its rank.
func (r *Record) advance(s Status) bool {
	for {
		cur := Status(r.status.Load())
		if cur == StatusDestroyed {
			return s == StatusDestroyed
		}
		if s.rank() < cur.rank() {
			return false
		}
		if r.status.CompareAndSwap(int32(cur), int32(s)) {
			return true
		}
	}
}

func (r *Record) bind(h Handle) bool {
	return r.handle.CompareAndSwap(0, uint64(h))
}

// Request is the payload of an interaction envelope.
type Request struct {
	Record *Record
	Action Action
}
