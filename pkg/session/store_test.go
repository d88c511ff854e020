package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

var longText = strings.Repeat("photosynthesis converts light into chemical energy. ", 5)

func newTestStore(opts ...Option) *Store {
	return NewStore(logger.NewNopLogger(), opts...)
}

func TestStartBackgroundSearchFlipsToSearchingSynchronously(t *testing.T) {
	store := newTestStore()
	release := make(chan struct{})

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		<-release
		return longText, nil
	})

	// The searching transition commits before the fetch resolves.
	snap := store.GetState()
	assert.Equal(t, StatusSearching, snap.Status)
	assert.True(t, snap.Started)
	assert.NotNil(t, snap.Content.SessionID)
	assert.NotEmpty(t, snap.Message)

	close(release)
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
}

func TestSuccessPopulatesContentThenAutoResets(t *testing.T) {
	store := newTestStore(WithResetDelays(30*time.Millisecond, time.Minute))

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return longText, nil
	})

	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, longText, store.GetState().Content.Text)

	// Auto-reset drops status back to idle but keeps the acquired content.
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusIdle
	}, time.Second, 5*time.Millisecond)
	snap := store.GetState()
	assert.Equal(t, longText, snap.Content.Text)
	assert.True(t, snap.Started)
	assert.Empty(t, snap.Message)
}

func TestShortResultBecomesErrorAndPreservesPriorContent(t *testing.T) {
	store := newTestStore(WithResetDelays(time.Minute, time.Minute))
	store.StartSessionWithContent(longText)

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return "too short", nil
	})

	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusError
	}, time.Second, 5*time.Millisecond)

	snap := store.GetState()
	assert.Equal(t, longText, snap.Content.Text, "failed search must not clobber prior content")
	assert.True(t, snap.Started)
	assert.NotEmpty(t, snap.Message)
}

func TestFetchErrorSurfacesMessageAndAutoResets(t *testing.T) {
	store := newTestStore(WithResetDelays(time.Minute, 30*time.Millisecond))

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("upstream unreachable")
	})

	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusError
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "upstream unreachable", store.GetState().Message)

	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusIdle
	}, time.Second, 5*time.Millisecond)
}

func TestPostSearchActionFiresExactlyOnce(t *testing.T) {
	store := newTestStore(WithResetDelays(time.Minute, time.Minute))

	var fired int32
	store.SetPostSearchAction(&PostSearchAction{
		Tool:     "quiz",
		Navigate: func(path string) { atomic.AddInt32(&fired, 1) },
	})

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return longText, nil
	})
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	// A second success must not replay the already-consumed action.
	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return longText, nil
	})
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestResetContentClearsSession(t *testing.T) {
	store := newTestStore()
	subject := "biology"
	store.SetSelection(&subject, "grade-9", IntentRevise)
	store.StartSessionWithContent(longText)

	store.ResetContent()

	snap := store.GetState()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.False(t, snap.Started)
	assert.Empty(t, snap.Content.Text)
	assert.Nil(t, snap.Content.Subject)
	assert.Nil(t, snap.Content.SessionID)
	assert.Equal(t, IntentAny, snap.Content.Intent)
}

func TestSupersededSearchResultIsDiscarded(t *testing.T) {
	store := newTestStore()
	release := make(chan struct{})
	done := make(chan struct{})

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		<-release
		close(done)
		return "", errors.New("slow fetch failed")
	})

	// The synchronous start supersedes the in-flight search.
	store.StartSessionWithContent(longText)
	close(release)
	<-done

	assert.Eventually(t, func() bool {
		// Give the stale completion a chance to (wrongly) commit.
		snap := store.GetState()
		return snap.Status == StatusIdle && snap.Content.Text == longText
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	snap := store.GetState()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Message)
}

func TestStaleResetTimerDoesNotTouchNewerOperation(t *testing.T) {
	store := newTestStore(WithResetDelays(20*time.Millisecond, time.Minute))

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return longText, nil
	})
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)

	// Start a new search before the success reset fires; the old timer must
	// not knock the new search back to idle.
	block := make(chan struct{})
	defer close(block)
	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		<-block
		return longText, nil
	})

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StatusSearching, store.GetState().Status)
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	store := newTestStore(WithResetDelays(time.Minute, time.Minute))

	var statuses []SearchStatus
	seen := make(chan SearchStatus, 8)
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		seen <- snap.Status
	})
	defer unsubscribe()

	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return longText, nil
	})

	deadline := time.After(time.Second)
	for len(statuses) < 2 {
		select {
		case st := <-seen:
			statuses = append(statuses, st)
		case <-deadline:
			t.Fatalf("timed out waiting for transitions, got %v", statuses)
		}
	}
	assert.Equal(t, StatusSearching, statuses[0])
	assert.Equal(t, StatusSuccess, statuses[1])
}

func TestContentFloorCountsCharactersNotBytes(t *testing.T) {
	store := newTestStore(WithResetDelays(time.Minute, time.Minute))

	// 49 characters of kanji is 147 bytes but still under the floor.
	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return strings.Repeat("光", MinContentLength-1), nil
	})
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusError
	}, time.Second, 5*time.Millisecond)

	store = newTestStore(WithResetDelays(time.Minute, time.Minute))
	store.StartBackgroundSearch(context.Background(), func(ctx context.Context) (string, error) {
		return strings.Repeat("光", MinContentLength), nil
	})
	assert.Eventually(t, func() bool {
		return store.GetState().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
}
