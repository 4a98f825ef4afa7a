// Package dictation streams voice dictation into the journal editor.
// Speech recognition itself runs in the browser; the server holds the
// session state, merges interim and final results into one transcript, and
// hands the finished text back to the editor. Nothing is saved here.
package dictation

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// State is where a session is in its lifecycle.
type State string

// Session states. A session only ever moves forward.
const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateFinalizing State = "finalizing"
	StateClosed     State = "closed"
)

// MaxTranscript caps the text one session accumulates.
const MaxTranscript = 20_000

// Errors returned by Push and Stop.
var (
	ErrNotListening = errors.New("dictation is not listening")
	ErrTooLong      = errors.New("dictation transcript is too long")
)

// Transcript is one recognition result from the browser. Interim results
// are guesses that the next result replaces; final results are kept.
type Transcript struct {
	Text  string
	Final bool
}

// Event kinds.
const (
	EventState      = "state"
	EventTranscript = "transcript"
	EventFinal      = "final"
)

// Event is emitted on the session's Events channel.
type Event struct {
	Type  string `json:"type"`
	State State  `json:"state,omitempty"`
	Text  string `json:"text,omitempty"`
}

const (
	eventBuffer = 64
	// lifecycle events per session: listening, finalizing, final, closed.
	reservedEvents = 4
)

// Session is one dictation run.
type Session struct {
	mu      sync.Mutex
	state   State
	final   []string
	interim string
	events  chan Event
	cancel  context.CancelFunc
}

// Start opens a listening session. Cancelling ctx closes it and drops any
// interim text.
func Start(ctx context.Context) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		state:  StateIdle,
		events: make(chan Event, eventBuffer),
		cancel: cancel,
	}
	s.mu.Lock()
	s.transition(StateListening)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.abort()
	}()
	return s
}

// Events delivers state changes and transcript snapshots. It is closed when
// the session closes. Intermediate snapshots may be dropped if the reader
// falls behind; state changes and the final text never are.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text is the transcript so far: final results followed by pending interim
// text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Push applies a recognition result while listening.
func (s *Session) Push(t Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateListening {
		return ErrNotListening
	}

	text := strings.Join(strings.Fields(t.Text), " ")
	if len(strings.Join(s.final, " "))+len(text) > MaxTranscript {
		return ErrTooLong
	}
	if t.Final {
		if text != "" {
			s.final = append(s.final, text)
		}
		s.interim = ""
	} else {
		s.interim = text
	}
	s.emit(Event{Type: EventTranscript, Text: s.snapshot()}, false)
	return nil
}

// Stop ends a listening session and returns the finished transcript. Pending
// interim text is kept as the last words spoken.
func (s *Session) Stop() (string, error) {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return "", ErrNotListening
	}
	s.transition(StateFinalizing)
	if s.interim != "" {
		s.final = append(s.final, s.interim)
		s.interim = ""
	}
	text := strings.Join(s.final, " ")
	s.emit(Event{Type: EventFinal, Text: text}, true)
	s.close()
	s.mu.Unlock()

	s.cancel()
	return text, nil
}

// abort closes the session after its context ended.
func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.interim = ""
	s.close()
}

// close moves to StateClosed and closes Events. Callers hold mu.
func (s *Session) close() {
	s.transition(StateClosed)
	close(s.events)
}

// transition changes state and announces it. Callers hold mu.
func (s *Session) transition(to State) {
	s.state = to
	s.emit(Event{Type: EventState, State: to}, true)
}

// emit never blocks: room is always kept for lifecycle events, and a
// snapshot that does not fit is dropped since the next one supersedes it.
func (s *Session) emit(ev Event, lifecycle bool) {
	if !lifecycle && len(s.events) >= cap(s.events)-reservedEvents {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Session) snapshot() string {
	parts := s.final
	if s.interim != "" {
		parts = append(parts[:len(parts):len(parts)], s.interim)
	}
	return strings.Join(parts, " ")
}
