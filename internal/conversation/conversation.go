// Package conversation owns the append-only chat log for one session.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/franckalain/dermscan/internal/analyzer"
	"github.com/franckalain/dermscan/internal/models"
)

// ErrBusy is returned when a submission arrives while another analysis is
// still in flight. At most one outstanding analyzer call exists per log.
var ErrBusy = errors.New("an analysis is already in progress")

// ErrEmptySubmission mirrors the request-builder contract: callers must
// reject submissions with neither text nor image before they reach the log.
var ErrEmptySubmission = analyzer.ErrEmptySubmission

// errorReply is the fixed user-facing message for any failed analysis.
const errorReply = "I couldn't analyze that. Please ensure the ingredient list is clear or try pasting the text directly."

// Log is a strictly append-only ordered conversation. Messages are never
// mutated or individually removed; the log lives and dies with its session.
type Log struct {
	analyzer analyzer.Analyzer

	mu        sync.Mutex
	messages  []models.ChatMessage
	analyzing bool
}

// New creates an empty conversation backed by the given analyzer.
func New(a analyzer.Analyzer) *Log {
	return &Log{analyzer: a}
}

// Messages returns a copy of the ordered log.
func (l *Log) Messages() []models.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Analyzing reports whether a submission is in flight.
func (l *Log) Analyzing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.analyzing
}

// Submit appends the user turn immediately, runs the analyzer, and appends
// the assistant turn: the result on success, or an error-flagged message
// with a fixed apology on failure. notify, when non-nil, is called for each
// appended message in order. A canceled in-flight call appends no assistant
// message at all.
func (l *Log) Submit(ctx context.Context, text, image string, notify func(models.ChatMessage)) error {
	if text == "" && image == "" {
		return ErrEmptySubmission
	}

	l.mu.Lock()
	if l.analyzing {
		l.mu.Unlock()
		return ErrBusy
	}
	l.analyzing = true
	userMsg := models.ChatMessage{
		ID:      uuid.New().String(),
		Role:    models.RoleUser,
		Content: text,
		Image:   image,
	}
	l.messages = append(l.messages, userMsg)
	l.mu.Unlock()

	if notify != nil {
		notify(userMsg)
	}

	result, err := l.analyzer.Analyze(ctx, text, image)

	l.mu.Lock()
	l.analyzing = false
	if err != nil && ctx.Err() != nil {
		// Canceled mid-flight: the submission is abandoned without a reply.
		l.mu.Unlock()
		return fmt.Errorf("analysis canceled: %w", ctx.Err())
	}

	reply := models.ChatMessage{
		ID:   uuid.New().String(),
		Role: models.RoleAssistant,
	}
	if err != nil {
		if errors.Is(err, analyzer.ErrMalformedResponse) {
			log.Errorf("analyzer returned a malformed response: %v", err)
		} else {
			log.Errorf("analysis failed: %v", err)
		}
		reply.IsError = true
		reply.Content = errorReply
	} else {
		reply.Analysis = result
	}
	l.messages = append(l.messages, reply)
	l.mu.Unlock()

	if notify != nil {
		notify(reply)
	}
	return nil
}

// LoadSaved re-injects a saved analysis into the conversation as an
// assistant turn, without contacting the analyzer.
func (l *Log) LoadSaved(saved models.SavedAnalysis) models.ChatMessage {
	result := saved.Result
	msg := models.ChatMessage{
		ID:       uuid.New().String(),
		Role:     models.RoleAssistant,
		Content:  fmt.Sprintf("Loaded saved analysis: %s", saved.Name),
		Analysis: &result,
	}

	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// Find returns the message with the given id, if present.
func (l *Log) Find(id string) (models.ChatMessage, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m.ID == id {
			return m, true
		}
	}
	return models.ChatMessage{}, false
}
