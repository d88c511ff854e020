package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// UnlimitedBandThreshold is the balance above which deduction is skipped.
// The balance doubles as the premium flag in the token system, so a balance in
// the unlimited band is treated as "do not charge".
const UnlimitedBandThreshold = 500

// Descriptor describes one generative request.
type Descriptor struct {
	Kind        string // "quiz", "solve", "explain", "search", ...
	Subject     string
	ModelHint   string
	Prompt      string
	OutputShape string // "text" | "json" | "binary"
}

// Result is the successful outcome of a gated call.
type Result struct {
	Payload string
	Charged bool
}

// ActivityEntry is the best-effort usage record written after a call.
type ActivityEntry struct {
	Kind    string
	Subject string
	Payload map[string]interface{}
}

// Accounts is the identity/balance collaborator. The pipeline never caches a
// balance across calls; it re-reads at the check and again before deducting.
type Accounts interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	DecrementBalance(ctx context.Context, userID uuid.UUID) error
	RecordActivity(ctx context.Context, userID uuid.UUID, entry ActivityEntry) error
}

// Generator is the opaque generative-AI collaborator.
type Generator interface {
	Generate(ctx context.Context, desc Descriptor) (string, error)
}

// Pipeline wraps every generative call with enforce, call, deduct, record.
type Pipeline struct {
	accounts  Accounts
	generator Generator
	log       logger.ILogger
}

// NewPipeline creates a gated request pipeline.
func NewPipeline(accounts Accounts, generator Generator, log logger.ILogger) *Pipeline {
	return &Pipeline{
		accounts:  accounts,
		generator: generator,
		log:       log,
	}
}

// Invoke performs one token-gated generative call.
//
// The steps are hard sequence points: affordability is checked before any
// outbound call, the charge happens only after a successful call, and activity
// recording never blocks or fails the caller. There are no retries; a
// transient upstream failure surfaces once and the caller re-triggers.
func (p *Pipeline) Invoke(ctx context.Context, userID uuid.UUID, desc Descriptor) (*Result, error) {
	if userID == uuid.Nil {
		return nil, &InsufficientBalanceError{}
	}

	// 1. Affordability. The check-then-act is not transactional against
	// concurrent calls for the same user; see the wallet service notes.
	balance, err := p.accounts.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, &InsufficientBalanceError{Balance: balance}
	}

	// 2. The generative call itself. No deduction on failure.
	payload, err := p.generator.Generate(ctx, desc)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	// 3. Deduct. Failures here are swallowed: the user already has the result,
	// and a free call on a backend hiccup beats a double charge.
	charged := p.deduct(ctx, userID, desc)

	// 4. Record activity, fire-and-forget.
	go p.recordActivity(userID, desc, charged)

	return &Result{Payload: payload, Charged: charged}, nil
}

func (p *Pipeline) deduct(ctx context.Context, userID uuid.UUID, desc Descriptor) bool {
	balance, err := p.accounts.GetBalance(ctx, userID)
	if err != nil {
		p.log.Warn("GATE", "Balance re-read failed, skipping deduction", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return false
	}
	if balance > UnlimitedBandThreshold {
		return false
	}
	if err := p.accounts.DecrementBalance(ctx, userID); err != nil {
		p.log.Warn("GATE", "Token deduction failed", map[string]interface{}{
			"user_id": userID,
			"kind":    desc.Kind,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

func (p *Pipeline) recordActivity(userID uuid.UUID, desc Descriptor, charged bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := ActivityEntry{
		Kind:    desc.Kind,
		Subject: desc.Subject,
		Payload: map[string]interface{}{
			"model_hint":   desc.ModelHint,
			"output_shape": desc.OutputShape,
			"charged":      charged,
		},
	}
	if err := p.accounts.RecordActivity(ctx, userID, entry); err != nil {
		p.log.Warn("GATE", "Activity record failed", map[string]interface{}{
			"user_id": userID,
			"kind":    desc.Kind,
			"error":   err.Error(),
		})
	}
}

// DecodeJSONPayload strips a markdown code fence the model may wrap its answer
// in, then decodes into v. Decode failures come back as *ParseError.
func DecodeJSONPayload(raw string, v interface{}) error {
	cleaned := bytes.TrimSpace([]byte(raw))
	cleaned = bytes.TrimPrefix(cleaned, []byte("```json"))
	cleaned = bytes.TrimPrefix(cleaned, []byte("```"))
	cleaned = bytes.TrimSuffix(cleaned, []byte("```"))
	cleaned = bytes.TrimSpace(cleaned)

	if err := json.Unmarshal(cleaned, v); err != nil {
		return &ParseError{Err: err, Raw: raw}
	}
	return nil
}
