package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

const notificationBuffer = 256

// GameNotification is a session event flattened for UI clients.
type GameNotification struct {
	Type      string // event type, or SESSION_STARTED / SESSION_ENDED
	SessionID string
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives notifications on the engine's dispatch goroutine.
type NotificationHandler func(notification GameNotification)

// Engine owns every running session and drives their clocks.
type Engine struct {
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	handler  NotificationHandler

	notifications chan GameNotification
	done          chan struct{}
	closeOnce     sync.Once
	wg            sync.WaitGroup
}

// NewEngine creates an engine and starts its notification dispatcher.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:        logger,
		sessions:      make(map[string]*Session),
		notifications: make(chan GameNotification, notificationBuffer),
		done:          make(chan struct{}),
	}
	e.wg.Add(1)
	go e.dispatch()
	return e
}

// SetNotificationHandler sets the handler for session notifications.
// Notifications are delivered in order on a single goroutine, so the
// handler may call back into the engine.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

func (e *Engine) dispatch() {
	defer e.wg.Done()
	for {
		select {
		case n := <-e.notifications:
			e.deliver(n)
		case <-e.done:
			for {
				select {
				case n := <-e.notifications:
					e.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (e *Engine) deliver(n GameNotification) {
	e.mu.RLock()
	handler := e.handler
	e.mu.RUnlock()
	if handler != nil {
		handler(n)
	}
}

// emitNotification queues n without blocking. A full queue drops it.
func (e *Engine) emitNotification(n GameNotification) {
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.notifications <- n:
	default:
		e.logger.Warn("notification dropped",
			zap.String("type", n.Type),
			zap.String("session_id", n.SessionID),
		)
	}
}

func (e *Engine) forward(evt rules.Event) {
	data := map[string]interface{}{
		"event_id":      evt.ID,
		"activation_id": evt.ActivationID,
		"tile":          evt.Tile.String(),
		"step":          evt.Step,
		"amount":        evt.Amount,
		"flag":          evt.Flag,
		"at":            evt.At,
	}
	if evt.Ability != board.None {
		data["ability"] = evt.Ability.String()
	}
	if evt.Description != "" {
		data["description"] = evt.Description
	}
	for k, v := range evt.Metadata {
		data[k] = v
	}
	e.emitNotification(GameNotification{
		Type:      string(evt.Type),
		SessionID: evt.SessionID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// StartSession creates and registers a new session.
func (e *Engine) StartSession(opts Options, deck Deck, level LevelController) (*Session, error) {
	id := uuid.NewString()
	session, err := NewSession(id, opts, deck, level, e.logger)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	session.Events().Subscribe(e.forward)

	e.mu.Lock()
	e.sessions[id] = session
	e.mu.Unlock()

	e.emitNotification(GameNotification{
		Type:      "SESSION_STARTED",
		SessionID: id,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"cols":  opts.Cols,
			"rows":  opts.Rows,
			"level": opts.Level,
		},
	})
	return session, nil
}

// Session looks up a session by ID.
func (e *Engine) Session(id string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	session, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// PlaceCard places card in the given session.
func (e *Engine) PlaceCard(sessionID string, card *board.Card, idx board.Index) (*Placement, error) {
	session, err := e.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.PlaceCard(card, idx)
}

// EndSession removes a session. Its pending timers are discarded.
func (e *Engine) EndSession(id string) error {
	e.mu.Lock()
	session, ok := e.sessions[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(e.sessions, id)
	e.mu.Unlock()

	state := session.State()
	e.logger.Info("session ended",
		zap.String("session_id", id),
		zap.Int("score", state.Score),
		zap.Int("level", state.Level),
	)
	e.emitNotification(GameNotification{
		Type:      "SESSION_ENDED",
		SessionID: id,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"score": state.Score,
			"level": state.Level,
		},
	})
	return nil
}

// Sessions returns the IDs of every running session, sorted.
func (e *Engine) Sessions() []string {
	e.mu.RLock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Advance moves every session clock forward by dt and returns the number
// of timers fired.
func (e *Engine) Advance(dt time.Duration) int {
	fired := 0
	for _, id := range e.Sessions() {
		session, err := e.Session(id)
		if err != nil {
			continue
		}
		fired += session.Advance(dt)
	}
	return fired
}

// Run advances all sessions in real time until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Advance(now.Sub(last))
			last = now
		}
	}
}

// Close stops the dispatcher after delivering queued notifications.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
	})
}
