package session

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// SearchStatus is the lifecycle of a background content acquisition.
type SearchStatus string

const (
	StatusIdle      SearchStatus = "idle"
	StatusSearching SearchStatus = "searching"
	StatusSuccess   SearchStatus = "success"
	StatusError     SearchStatus = "error"
)

// Intent describes what the student wants to do with the content.
type Intent string

const (
	IntentLearn  Intent = "learn"
	IntentRevise Intent = "revise"
	IntentSolve  Intent = "solve"
	IntentAny    Intent = "any"
)

const (
	// MinContentLength is the floor below which a fetched result is treated
	// as a failed acquisition rather than usable study material.
	MinContentLength = 50

	DefaultSuccessResetDelay = 3 * time.Second
	DefaultErrorResetDelay   = 6 * time.Second

	searchingMessage = "Gathering study content..."
	completeMessage  = "Study content ready"
	tooShortMessage  = "Could not find enough content for this topic"
)

// Content is the study material for the current session.
type Content struct {
	Text       string  `json:"text"`
	Subject    *string `json:"subject"`
	ClassLevel string  `json:"class_level"`
	Intent     Intent  `json:"intent"`
	SessionID  *string `json:"session_id"`
}

// PostSearchAction defers a tool navigation until content arrives.
type PostSearchAction struct {
	Tool     string
	Navigate func(path string)
}

// Snapshot is a point-in-time copy of the store, safe to hand to readers.
type Snapshot struct {
	Content Content      `json:"content"`
	Status  SearchStatus `json:"status"`
	Message string       `json:"message"`
	Started bool         `json:"started"`
}

// FetchFunc produces study content; callers wire affordability checks inside it.
type FetchFunc func(ctx context.Context) (string, error)

// Listener receives a snapshot after every committed transition.
type Listener func(Snapshot)

// Store owns the session content and search-status state machine.
// All mutations go through its methods; UI-facing layers only read snapshots.
type Store struct {
	mu         sync.Mutex
	content    Content
	status     SearchStatus
	message    string
	postAction *PostSearchAction
	started    bool

	// opToken identifies the most recently started operation. Async completions
	// and reset timers carry the token they were minted with and only commit
	// while it is still current, so an overlapping start supersedes them.
	opToken    uint64
	resetTimer *time.Timer

	successResetDelay time.Duration
	errorResetDelay   time.Duration

	listeners  map[int]Listener
	nextListID int

	log logger.ILogger
}

// Option tweaks store construction.
type Option func(*Store)

// WithResetDelays overrides the auto-reset delays. Tests use millisecond delays.
func WithResetDelays(success, failure time.Duration) Option {
	return func(s *Store) {
		s.successResetDelay = success
		s.errorResetDelay = failure
	}
}

// NewStore creates an idle session store.
func NewStore(log logger.ILogger, opts ...Option) *Store {
	s := &Store{
		status:            StatusIdle,
		content:           Content{Intent: IntentAny},
		successResetDelay: DefaultSuccessResetDelay,
		errorResetDelay:   DefaultErrorResetDelay,
		listeners:         map[int]Listener{},
		log:               log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns a snapshot of the current store state.
func (s *Store) GetState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextListID
	s.nextListID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SetSelection updates the subject/level/intent selectors. The selectors are
// independent of how content is acquired.
func (s *Store) SetSelection(subject *string, classLevel string, intent Intent) {
	s.mu.Lock()
	s.content.Subject = subject
	s.content.ClassLevel = classLevel
	s.content.Intent = intent
	listeners, snap := s.listenersAndSnapshotLocked()
	s.mu.Unlock()
	notify(listeners, snap)
}

// SetPostSearchAction queues a navigation to run once a background search
// succeeds. Passing nil clears the queued action.
func (s *Store) SetPostSearchAction(action *PostSearchAction) {
	s.mu.Lock()
	s.postAction = action
	s.mu.Unlock()
}

// StartSessionWithContent begins a session from already-available text, e.g.
// pasted material. It forces the status back to idle so a stale searching or
// error state cannot leak across a synchronous start.
func (s *Store) StartSessionWithContent(text string) {
	s.mu.Lock()
	s.opToken++
	s.cancelResetLocked()

	id := uuid.NewString()
	s.content.SessionID = &id
	s.content.Text = text
	s.started = true
	s.status = StatusIdle
	s.message = ""
	listeners, snap := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	s.log.Info("SESSION", "Session started with provided content", map[string]interface{}{
		"session_id": id,
		"length":     len(text),
	})
	notify(listeners, snap)
}

// StartBackgroundSearch flips the store to searching synchronously, then runs
// fetchFn on its own goroutine. Callers do not await it; they observe status.
func (s *Store) StartBackgroundSearch(ctx context.Context, fetchFn FetchFunc) {
	s.mu.Lock()
	s.opToken++
	token := s.opToken
	s.cancelResetLocked()

	id := uuid.NewString()
	s.content.SessionID = &id
	s.started = true
	s.status = StatusSearching
	s.message = searchingMessage
	listeners, snap := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	s.log.Info("SESSION", "Background search started", map[string]interface{}{
		"session_id": id,
	})
	notify(listeners, snap)

	go func() {
		text, err := fetchFn(ctx)
		s.completeSearch(token, text, err)
	}()
}

// ResetContent abandons the session entirely.
func (s *Store) ResetContent() {
	s.mu.Lock()
	s.opToken++
	s.cancelResetLocked()

	s.content = Content{Intent: IntentAny}
	s.status = StatusIdle
	s.message = ""
	s.postAction = nil
	s.started = false
	listeners, snap := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

func (s *Store) completeSearch(token uint64, text string, err error) {
	s.mu.Lock()
	if token != s.opToken {
		// A newer start superseded this operation; its result must not commit.
		s.mu.Unlock()
		return
	}

	// The floor counts characters, not bytes, so multibyte scripts are not
	// over-counted.
	if err != nil || utf8.RuneCountInString(text) < MinContentLength {
		msg := tooShortMessage
		if err != nil {
			msg = err.Error()
		}
		// Previously loaded content and the started flag survive a failed search.
		s.status = StatusError
		s.message = msg
		s.scheduleResetLocked(token, s.errorResetDelay)
		listeners, snap := s.listenersAndSnapshotLocked()
		s.mu.Unlock()

		s.log.Warn("SESSION", "Background search failed", map[string]interface{}{
			"error": msg,
		})
		notify(listeners, snap)
		return
	}

	s.content.Text = text
	s.status = StatusSuccess
	s.message = completeMessage
	action := s.postAction
	s.postAction = nil
	s.scheduleResetLocked(token, s.successResetDelay)
	listeners, snap := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	s.log.Info("SESSION", "Background search succeeded", map[string]interface{}{
		"length": utf8.RuneCountInString(text),
	})
	notify(listeners, snap)

	// Queued navigation fires once, right after the success transition.
	if action != nil && action.Navigate != nil {
		action.Navigate(action.Tool)
	}
}

// scheduleResetLocked arms the auto-reset back to idle. The token guard makes a
// stale timer a no-op if a newer operation started before it fired.
func (s *Store) scheduleResetLocked(token uint64, delay time.Duration) {
	s.cancelResetLocked()
	s.resetTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if token != s.opToken {
			s.mu.Unlock()
			return
		}
		s.status = StatusIdle
		s.message = ""
		s.postAction = nil
		listeners, snap := s.listenersAndSnapshotLocked()
		s.mu.Unlock()
		notify(listeners, snap)
	})
}

func (s *Store) cancelResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Content: s.content,
		Status:  s.status,
		Message: s.message,
		Started: s.started,
	}
}

func (s *Store) listenersAndSnapshotLocked() ([]Listener, Snapshot) {
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	return ls, s.snapshotLocked()
}

// notify runs outside the store lock so listeners may call back into the store.
func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}
