package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/lumina-ai/lumina/internal/metrics"
	"github.com/lumina-ai/lumina/internal/retrieve"
	"github.com/lumina-ai/lumina/internal/store"
	"github.com/lumina-ai/lumina/internal/vectorstore"
	"github.com/lumina-ai/lumina/provider"
)

const (
	askEmailInstruction = "The user has NOT provided their email address yet. " +
		"If the user shows strong interest or the conversation reaches a natural point to follow up, " +
		"please politely ask for their email address to send more information or schedule a demo."
	haveEmailInstruction = "The user has ALREADY provided their email address. Do not ask for it again."

	intentInstruction = "The user's latest message signals purchase intent. " +
		"Lean into it: highlight concrete value and offer a clear next step."

	defaultHistoryWindow = 6
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var purchaseKeywords = []string{
	"price", "cost", "pricing", "how much",
	"how to start", "how to buy", "get started",
	"trial", "demo", "free trial",
	"buy", "purchase", "subscribe",
	"plan", "package", "pricing plan",
}

// SessionStore is the slice of the persistence layer the orchestrator needs.
type SessionStore interface {
	EnsureSession(ctx context.Context, sessionID, clientID string) (store.Session, error)
	IncrementTurn(ctx context.Context, sessionID string) (int, error)
	MarkEmailProvided(ctx context.Context, sessionID string) (bool, error)
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	RecentMessages(ctx context.Context, sessionID string, n int) ([]store.Message, error)
	CreateLead(ctx context.Context, name, email, company, phone, notes string) (string, error)
}

// Retriever produces grounding context for a user message.
type Retriever interface {
	Retrieve(ctx context.Context, message, clientID string) ([]vectorstore.Match, error)
}

// Request is one inbound user turn.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
}

// Reply is the synchronous result of a turn.
type Reply struct {
	Response      string `json:"response"`
	SessionID     string `json:"session_id"`
	TurnCount     int    `json:"turn_count"`
	EmailProvided bool   `json:"email_provided"`
}

// Event is one element of a streamed turn. Type is "chunk", "done", or
// "error"; exactly one terminal ("done" or "error") event closes the stream.
// The terminal "done" event always carries session_id, turn_count, and
// email_provided, even when email_provided is false.
type Event struct {
	Type          string `json:"type"`
	Content       string `json:"content,omitempty"`
	SessionID     string `json:"session_id"`
	TurnCount     int    `json:"turn_count"`
	EmailProvided bool   `json:"email_provided"`
	Message       string `json:"message,omitempty"`
}

// Orchestrator drives one conversation turn: session state, lead capture,
// retrieval, prompt assembly, completion, persistence. Turns for the same
// session are serialized.
type Orchestrator struct {
	sessions      SessionStore
	retriever     Retriever
	llm           provider.Provider
	historyWindow int
	logger        *log.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is a refcounted per-session mutex. The map entry is removed
// when the last holder releases, so idle sessions cost nothing.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewOrchestrator(sessions SessionStore, retriever Retriever, llm provider.Provider, historyWindow int, logger *log.Logger) (*Orchestrator, error) {
	if sessions == nil {
		return nil, errors.New("session store required")
	}
	if retriever == nil {
		return nil, errors.New("retriever required")
	}
	if llm == nil {
		return nil, errors.New("llm provider required")
	}
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	}
	return &Orchestrator{
		sessions:      sessions,
		retriever:     retriever,
		llm:           llm,
		historyWindow: historyWindow,
		logger:        logger,
		locks:         map[string]*sessionLock{},
	}, nil
}

func (o *Orchestrator) acquireSession(sessionID string) *sessionLock {
	o.mu.Lock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		o.locks[sessionID] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return l
}

func (o *Orchestrator) releaseSession(sessionID string, l *sessionLock) {
	l.mu.Unlock()
	o.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(o.locks, sessionID)
	}
	o.mu.Unlock()
}

// ExtractEmail returns the first email address found in text, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// DetectPurchaseIntent reports whether the message signals buying interest.
func DetectPurchaseIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range purchaseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// turnState carries everything prepared before the model is called.
type turnState struct {
	turnCount     int
	emailProvided bool
	messages      []provider.Message
}

// prepareTurn runs the pre-completion half of a turn: session bootstrap,
// turn increment, user message persistence, email capture, retrieval, and
// prompt assembly. Failures here fail the turn; retrieval failures do not,
// they degrade to an empty context block.
func (o *Orchestrator) prepareTurn(ctx context.Context, req Request) (turnState, error) {
	var st turnState

	sess, err := o.sessions.EnsureSession(ctx, req.SessionID, req.ClientID)
	if err != nil {
		return st, err
	}
	st.turnCount, err = o.sessions.IncrementTurn(ctx, req.SessionID)
	if err != nil {
		return st, err
	}
	if err := o.sessions.AppendMessage(ctx, req.SessionID, "user", req.Message); err != nil {
		return st, err
	}

	st.emailProvided = sess.EmailProvided
	if email := ExtractEmail(req.Message); email != "" && !sess.EmailProvided {
		first, err := o.sessions.MarkEmailProvided(ctx, req.SessionID)
		if err != nil {
			return st, err
		}
		st.emailProvided = true
		if first {
			name := strings.SplitN(email, "@", 2)[0]
			notes := fmt.Sprintf("Auto-created from chat session, Session ID: %s", req.SessionID)
			if _, err := o.sessions.CreateLead(ctx, name, email, "", "", notes); err != nil {
				// the session flag is already set; losing the lead row is
				// worse than a duplicate ask, so surface it
				return st, fmt.Errorf("creating lead: %w", err)
			}
			metrics.LeadsCaptured.Inc()
			o.logger.Printf("lead captured for session %s", req.SessionID)
		}
	}

	contextText := retrieve.NoContextPlaceholder
	matches, err := o.retriever.Retrieve(ctx, req.Message, req.ClientID)
	switch {
	case err == nil:
		contextText = retrieve.FormatContext(matches)
	case retrieve.IsEmbedFailure(err):
		// no embedding means no turn; a store outage degrades, this aborts
		return st, err
	default:
		metrics.RetrievalFailures.Inc()
		o.logger.Printf("retrieval failed, continuing without context: %v", err)
	}

	history, err := o.sessions.RecentMessages(ctx, req.SessionID, o.historyWindow)
	if err != nil {
		return st, err
	}

	st.messages = assemblePrompt(contextText, st.emailProvided, DetectPurchaseIntent(req.Message), history)
	return st, nil
}

func assemblePrompt(contextText string, emailProvided, purchaseIntent bool, history []store.Message) []provider.Message {
	emailInstruction := askEmailInstruction
	if emailProvided {
		emailInstruction = haveEmailInstruction
	}
	intent := ""
	if purchaseIntent {
		intent = "\n\n" + intentInstruction
	}
	system := fmt.Sprintf(`You are a B2B sales expert. Your responses must be concise, professional, and persuasive.

Please answer user questions based on the provided context information.
If context information is insufficient, please answer based on your professional knowledge but mention you are not 100%% sure about specific details not in context.
Maintain a professional, friendly, and concise tone.

%s%s

Context Information:
%s`, emailInstruction, intent, contextText)

	messages := make([]provider.Message, 0, len(history)+1)
	messages = append(messages, provider.Message{Role: "system", Content: system})
	for _, m := range history {
		messages = append(messages, provider.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// Handle runs one synchronous turn.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Reply{}, errors.New("message cannot be empty")
	}
	lock := o.acquireSession(req.SessionID)
	defer o.releaseSession(req.SessionID, lock)

	st, err := o.prepareTurn(ctx, req)
	if err != nil {
		return Reply{}, err
	}

	response, err := o.llm.ChatCompletion(ctx, st.messages)
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}
	if response == "" {
		response = "Sorry, I cannot generate a response."
	}
	if err := o.sessions.AppendMessage(ctx, req.SessionID, "assistant", response); err != nil {
		return Reply{}, err
	}
	metrics.ChatTurns.WithLabelValues("sync").Inc()

	return Reply{
		Response:      response,
		SessionID:     req.SessionID,
		TurnCount:     st.turnCount,
		EmailProvided: st.emailProvided,
	}, nil
}

// HandleStream runs one streamed turn. The returned channel carries zero or
// more "chunk" events followed by exactly one "done" or "error" event, then
// closes. The assistant reply is persisted once, after the model stream ends
// cleanly.
func (o *Orchestrator) HandleStream(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message cannot be empty")
	}
	lock := o.acquireSession(req.SessionID)

	st, err := o.prepareTurn(ctx, req)
	if err != nil {
		o.releaseSession(req.SessionID, lock)
		return nil, err
	}

	stream, err := o.llm.StreamChatCompletion(ctx, st.messages)
	if err != nil {
		o.releaseSession(req.SessionID, lock)
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	events := make(chan Event)
	go func() {
		defer o.releaseSession(req.SessionID, lock)
		defer close(events)
		defer stream.Close()

		var response strings.Builder
		for fragment := range stream.Fragments() {
			response.WriteString(fragment)
			events <- Event{Type: "chunk", Content: fragment}
		}
		if err := stream.Err(); err != nil {
			o.logger.Printf("stream failed for session %s: %v", req.SessionID, err)
			events <- Event{Type: "error", Message: err.Error()}
			return
		}
		if err := o.sessions.AppendMessage(ctx, req.SessionID, "assistant", response.String()); err != nil {
			o.logger.Printf("persisting assistant reply failed: %v", err)
			events <- Event{Type: "error", Message: err.Error()}
			return
		}
		metrics.ChatTurns.WithLabelValues("stream").Inc()
		events <- Event{
			Type:          "done",
			SessionID:     req.SessionID,
			TurnCount:     st.turnCount,
			EmailProvided: st.emailProvided,
		}
	}()
	return events, nil
}
