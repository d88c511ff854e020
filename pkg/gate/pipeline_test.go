package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubAccounts struct {
	mu sync.Mutex

	balance    int
	balanceErr error

	decrements   int
	decrementErr error

	activities  []ActivityEntry
	activityErr error
	recorded    chan struct{}
}

func newStubAccounts(balance int) *stubAccounts {
	return &stubAccounts{balance: balance, recorded: make(chan struct{}, 4)}
}

func (s *stubAccounts) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, s.balanceErr
}

func (s *stubAccounts) DecrementBalance(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decrementErr != nil {
		return s.decrementErr
	}
	s.decrements++
	s.balance--
	return nil
}

func (s *stubAccounts) RecordActivity(ctx context.Context, userID uuid.UUID, entry ActivityEntry) error {
	s.mu.Lock()
	s.activities = append(s.activities, entry)
	err := s.activityErr
	s.mu.Unlock()
	s.recorded <- struct{}{}
	return err
}

func (s *stubAccounts) decrementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrements
}

type stubGenerator struct {
	payload string
	err     error
	calls   int
}

func (g *stubGenerator) Generate(ctx context.Context, desc Descriptor) (string, error) {
	g.calls++
	return g.payload, g.err
}

func quizDescriptor() Descriptor {
	return Descriptor{Kind: "quiz", Subject: "algebra", OutputShape: "json", Prompt: "..."}
}

func TestInvokeZeroBalanceBlocksBeforeGeneratorCall(t *testing.T) {
	accounts := newStubAccounts(0)
	gen := &stubGenerator{payload: "{}"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.Nil(t, res)
	assert.True(t, IsInsufficientBalance(err))
	assert.Equal(t, 0, gen.calls, "generator must never run for a broke user")
	assert.Equal(t, 0, accounts.decrementCount())
}

func TestInvokeChargesAfterSuccess(t *testing.T) {
	accounts := newStubAccounts(10)
	gen := &stubGenerator{payload: `{"ok":true}`}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, res.Payload)
	assert.True(t, res.Charged)
	assert.Equal(t, 1, accounts.decrementCount(), "exactly one token per successful call")
}

func TestInvokeUnlimitedBandSkipsDeduction(t *testing.T) {
	accounts := newStubAccounts(600)
	gen := &stubGenerator{payload: "essay text"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.NoError(t, err)
	assert.False(t, res.Charged)
	assert.Equal(t, 0, accounts.decrementCount())
}

func TestInvokeUpstreamFailureSkipsDeduction(t *testing.T) {
	accounts := newStubAccounts(10)
	gen := &stubGenerator{err: errors.New("model overloaded")}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.Nil(t, res)
	assert.True(t, IsUpstream(err))
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, 0, accounts.decrementCount())
}

func TestInvokeDeductionFailureStillDeliversPayload(t *testing.T) {
	accounts := newStubAccounts(10)
	accounts.decrementErr = errors.New("wallet backend down")
	gen := &stubGenerator{payload: "result"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.NoError(t, err, "deduction failures must not surface to the caller")
	assert.Equal(t, "result", res.Payload)
	assert.False(t, res.Charged)
}

func TestInvokeRecordFailureDoesNotAffectResult(t *testing.T) {
	accounts := newStubAccounts(10)
	accounts.activityErr = errors.New("activity store down")
	gen := &stubGenerator{payload: "result"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())

	assert.NoError(t, err)
	assert.Equal(t, "result", res.Payload)
	assert.Equal(t, 1, accounts.decrementCount(), "record failure cannot re-run or undo the charge")

	select {
	case <-accounts.recorded:
	case <-time.After(time.Second):
		t.Fatal("activity record was never attempted")
	}
}

func TestInvokeNilUserIsInsufficient(t *testing.T) {
	accounts := newStubAccounts(10)
	gen := &stubGenerator{payload: "result"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	res, err := pipeline.Invoke(context.Background(), uuid.Nil, quizDescriptor())

	assert.Nil(t, res)
	assert.True(t, IsInsufficientBalance(err))
	assert.Equal(t, 0, gen.calls)
}

func TestInvokeRecordsActivityWithDescriptor(t *testing.T) {
	accounts := newStubAccounts(10)
	gen := &stubGenerator{payload: "result"}
	pipeline := NewPipeline(accounts, gen, logger.NewNopLogger())

	_, err := pipeline.Invoke(context.Background(), uuid.New(), quizDescriptor())
	assert.NoError(t, err)

	select {
	case <-accounts.recorded:
	case <-time.After(time.Second):
		t.Fatal("activity record was never attempted")
	}

	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	assert.Len(t, accounts.activities, 1)
	assert.Equal(t, "quiz", accounts.activities[0].Kind)
	assert.Equal(t, "algebra", accounts.activities[0].Subject)
	assert.Equal(t, true, accounts.activities[0].Payload["charged"])
}

func TestDecodeJSONPayloadStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"title\":\"Fractions\"}\n```"

	var out struct {
		Title string `json:"title"`
	}
	err := DecodeJSONPayload(raw, &out)

	assert.NoError(t, err)
	assert.Equal(t, "Fractions", out.Title)
}

func TestDecodeJSONPayloadMalformedIsParseError(t *testing.T) {
	var out map[string]interface{}
	err := DecodeJSONPayload("I cannot answer that.", &out)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "I cannot answer that.", pe.Raw)
}
