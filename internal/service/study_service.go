package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-studypal-be/internal/constant"
	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/repository/memory"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/internal/websocket"

	"ai-studypal-be/pkg/content"
	"ai-studypal-be/pkg/embedding"
	"ai-studypal-be/pkg/events"
	"ai-studypal-be/pkg/gate"
	pktNats "ai-studypal-be/pkg/nats"
	"ai-studypal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type IStudyService interface {
	StartSession(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionStateResponse, error)
	GetSessionState(ctx context.Context, userId uuid.UUID) (*dto.SessionStateResponse, error)
	SetSelection(ctx context.Context, userId uuid.UUID, req *dto.SetSelectionRequest) (*dto.SessionStateResponse, error)
	SetPostSearchAction(ctx context.Context, userId uuid.UUID, req *dto.SetPostSearchActionRequest) error
	ResetSession(ctx context.Context, userId uuid.UUID) error

	GenerateQuiz(ctx context.Context, userId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	Solve(ctx context.Context, userId uuid.UUID, req *dto.SolveRequest) (*dto.SolveResponse, error)
	Explain(ctx context.Context, userId uuid.UUID, req *dto.ExplainRequest) (*dto.ExplainResponse, error)

	GetRelatedSessions(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.RelatedSessionResponse, error)
}

type studyService struct {
	registry          *memory.StoreRegistry
	pipeline          *gate.Pipeline
	fetcher           *content.Fetcher
	publisherService  IPublisherService
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	hub               *websocket.Hub
}

func NewStudyService(
	registry *memory.StoreRegistry,
	pipeline *gate.Pipeline,
	fetcher *content.Fetcher,
	publisherService IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	hub *websocket.Hub,
) IStudyService {
	return &studyService{
		registry:          registry,
		pipeline:          pipeline,
		fetcher:           fetcher,
		publisherService:  publisherService,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		hub:               hub,
	}
}

// storeFor returns the user's session store, attaching the status push
// listener when the store is first created.
func (s *studyService) storeFor(userId uuid.UUID) *session.Store {
	store, created := s.registry.GetOrCreate(userId.String())
	if created && s.hub != nil {
		store.Subscribe(func(snap session.Snapshot) {
			s.hub.Send(userId, websocket.Message{
				Type: websocket.TypeSessionStatus,
				Data: toSessionStateResponse(snap),
			})
		})
	}
	return store
}

func (s *studyService) StartSession(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionStateResponse, error) {
	store := s.storeFor(userId)

	subject := req.Subject
	classLevel := req.ClassLevel
	if classLevel == "" {
		classLevel = s.lookupClassLevel(ctx, userId)
	}
	store.SetSelection(&subject, classLevel, toIntent(req.Intent))

	// Pasted material starts the session synchronously.
	if req.Content != "" {
		store.StartSessionWithContent(req.Content)
		s.publishForEmbedding(ctx, userId, store)
		state := store.GetState()
		resp := toSessionStateResponse(state)
		return &resp, nil
	}

	// Otherwise acquire content in the background: crawl the given URL, or ask
	// the model for material through the gated pipeline.
	var fetchFn session.FetchFunc
	if req.SourceURL != "" {
		url := req.SourceURL
		fetchFn = func(fctx context.Context) (string, error) {
			return s.fetcher.FetchText(fctx, url)
		}
	} else {
		fetchFn = func(fctx context.Context) (string, error) {
			res, err := s.pipeline.Invoke(fctx, userId, gate.Descriptor{
				Kind:        constant.StudyKindSearch,
				Subject:     subject,
				Prompt:      fmt.Sprintf("Write comprehensive study material about %q for a %s student. Plain text, at least 300 words.", subject, classLevel),
				OutputShape: "text",
			})
			if err != nil {
				return "", err
			}
			return res.Payload, nil
		}
	}

	// Wrap so a successful fetch also feeds the embedding consumer.
	wrapped := func(fctx context.Context) (string, error) {
		text, err := fetchFn(fctx)
		if err == nil && len(text) >= session.MinContentLength {
			s.publishContentForEmbedding(fctx, userId, store, text, subject)
		}
		return text, err
	}

	store.StartBackgroundSearch(ctx, wrapped)

	state := store.GetState()
	resp := toSessionStateResponse(state)
	return &resp, nil
}

func (s *studyService) GetSessionState(ctx context.Context, userId uuid.UUID) (*dto.SessionStateResponse, error) {
	state := s.storeFor(userId).GetState()
	resp := toSessionStateResponse(state)
	return &resp, nil
}

func (s *studyService) SetSelection(ctx context.Context, userId uuid.UUID, req *dto.SetSelectionRequest) (*dto.SessionStateResponse, error) {
	store := s.storeFor(userId)
	subject := req.Subject
	classLevel := req.ClassLevel
	if classLevel == "" {
		classLevel = s.lookupClassLevel(ctx, userId)
	}
	store.SetSelection(&subject, classLevel, toIntent(req.Intent))

	state := store.GetState()
	resp := toSessionStateResponse(state)
	return &resp, nil
}

func (s *studyService) SetPostSearchAction(ctx context.Context, userId uuid.UUID, req *dto.SetPostSearchActionRequest) error {
	store := s.storeFor(userId)
	tool := req.Tool
	store.SetPostSearchAction(&session.PostSearchAction{
		Tool: tool,
		Navigate: func(path string) {
			if s.hub != nil {
				s.hub.Send(userId, websocket.Message{
					Type: websocket.TypeNotification,
					Data: map[string]interface{}{
						"action": "navigate",
						"tool":   path,
					},
				})
			}
		},
	})
	return nil
}

func (s *studyService) ResetSession(ctx context.Context, userId uuid.UUID) error {
	s.storeFor(userId).ResetContent()
	return nil
}

func (s *studyService) GenerateQuiz(ctx context.Context, userId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
	state, err := s.requireContent(userId)
	if err != nil {
		return nil, err
	}

	count := req.QuestionCount
	if count <= 0 {
		count = 5
	}

	subject := subjectOf(state)
	res, err := s.pipeline.Invoke(ctx, userId, gate.Descriptor{
		Kind:        constant.StudyKindQuiz,
		Subject:     subject,
		Prompt:      fmt.Sprintf(constant.QuizPromptV1, state.Content.Text, subject, state.Content.ClassLevel, count),
		OutputShape: "json",
	})
	if err != nil {
		return nil, err
	}

	var quiz dto.QuizResponse
	if err := gate.DecodeJSONPayload(res.Payload, &quiz); err != nil {
		return nil, err
	}
	quiz.Charged = res.Charged
	return &quiz, nil
}

func (s *studyService) Solve(ctx context.Context, userId uuid.UUID, req *dto.SolveRequest) (*dto.SolveResponse, error) {
	state := s.storeFor(userId).GetState()
	subject := subjectOf(state)

	res, err := s.pipeline.Invoke(ctx, userId, gate.Descriptor{
		Kind:        constant.StudyKindSolve,
		Subject:     subject,
		Prompt:      fmt.Sprintf(constant.SolvePromptV1, req.Problem, subject, state.Content.ClassLevel),
		OutputShape: "json",
	})
	if err != nil {
		return nil, err
	}

	var solved dto.SolveResponse
	if err := gate.DecodeJSONPayload(res.Payload, &solved); err != nil {
		return nil, err
	}
	solved.Charged = res.Charged
	return &solved, nil
}

func (s *studyService) Explain(ctx context.Context, userId uuid.UUID, req *dto.ExplainRequest) (*dto.ExplainResponse, error) {
	state := s.storeFor(userId).GetState()
	subject := subjectOf(state)

	res, err := s.pipeline.Invoke(ctx, userId, gate.Descriptor{
		Kind:        constant.StudyKindExplain,
		Subject:     subject,
		Prompt:      fmt.Sprintf(constant.ExplainPromptV1, req.Topic, state.Content.Text, subject, state.Content.ClassLevel),
		OutputShape: "json",
	})
	if err != nil {
		return nil, err
	}

	var explained dto.ExplainResponse
	if err := gate.DecodeJSONPayload(res.Payload, &explained); err != nil {
		return nil, err
	}
	explained.Charged = res.Charged
	return &explained, nil
}

func (s *studyService) GetRelatedSessions(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.RelatedSessionResponse, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	state := s.storeFor(userId).GetState()
	query := state.Content.Text
	if query == "" {
		query = subjectOf(state)
	}
	if query == "" {
		return []*dto.RelatedSessionResponse{}, nil
	}
	if len(query) > 1500 {
		query = query[:1500]
	}

	vec, err := s.embeddingProvider.Generate(query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.SessionEmbeddingRepository().FindNearest(ctx, userId, pgvector.NewVector(vec), limit*3)
	if err != nil {
		return nil, err
	}

	currentSession := ""
	if state.Content.SessionID != nil {
		currentSession = *state.Content.SessionID
	}

	seen := map[string]bool{}
	out := []*dto.RelatedSessionResponse{}
	for _, row := range rows {
		if row.SessionId == currentSession || seen[row.SessionId] {
			continue
		}
		seen[row.SessionId] = true

		res := &dto.RelatedSessionResponse{
			SessionId: row.SessionId,
			Snippet:   row.Excerpt,
		}
		if row.Subject != nil {
			res.Subject = *row.Subject
		}
		out = append(out, res)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *studyService) requireContent(userId uuid.UUID) (session.Snapshot, error) {
	state := s.storeFor(userId).GetState()
	if !state.Started || strings.TrimSpace(state.Content.Text) == "" {
		return state, errors.New("no study content loaded; start a session first")
	}
	return state, nil
}

func (s *studyService) lookupClassLevel(ctx context.Context, userId uuid.UUID) string {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil || user.ClassLevel == nil {
		return ""
	}
	return *user.ClassLevel
}

func (s *studyService) publishForEmbedding(ctx context.Context, userId uuid.UUID, store *session.Store) {
	state := store.GetState()
	if state.Content.SessionID == nil || state.Content.Text == "" {
		return
	}
	s.publishContentForEmbedding(ctx, userId, store, state.Content.Text, subjectOf(state))
}

func (s *studyService) publishContentForEmbedding(ctx context.Context, userId uuid.UUID, store *session.Store, text, subject string) {
	state := store.GetState()
	sessionId := ""
	if state.Content.SessionID != nil {
		sessionId = *state.Content.SessionID
	}
	if sessionId == "" {
		return
	}

	msg := dto.PublishEmbedSessionMessage{
		UserId:    userId,
		SessionId: sessionId,
		Subject:   subject,
		Content:   text,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		fmt.Printf("[WARN] Failed to publish embed message: %v\n", err)
		return
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewSessionContentReady(userId.String(), sessionId, subject)); err != nil {
			fmt.Printf("[WARN] Failed to publish SESSION_CONTENT_READY event: %v\n", err)
		}
	}
}

func subjectOf(state session.Snapshot) string {
	if state.Content.Subject != nil {
		return *state.Content.Subject
	}
	return ""
}

func toIntent(raw string) session.Intent {
	switch raw {
	case "quiz", "revise":
		return session.IntentRevise
	case "solve":
		return session.IntentSolve
	case "explain", "learn":
		return session.IntentLearn
	default:
		return session.IntentAny
	}
}

func toSessionStateResponse(snap session.Snapshot) dto.SessionStateResponse {
	resp := dto.SessionStateResponse{
		Status:     string(snap.Status),
		Message:    snap.Message,
		ClassLevel: snap.Content.ClassLevel,
		Intent:     string(snap.Content.Intent),
		Started:    snap.Started,
		HasContent: snap.Content.Text != "",
	}
	if snap.Content.SessionID != nil {
		resp.SessionId = *snap.Content.SessionID
	}
	if snap.Content.Subject != nil {
		resp.Subject = *snap.Content.Subject
	}
	return resp
}
