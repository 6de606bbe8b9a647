// Package permission implements the approval workflow for privileged agent
// actions: auto-approval driven by the persisted decision history, a FIFO
// queue of pending requests, and recording of operator decisions.
package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"occtl/internal/bus"
	"occtl/internal/logging"
	"occtl/internal/types"
)

var ErrNoPendingRequest = errors.New("no pending permission request")

// Responder sends a decision for one request to the server.
type Responder interface {
	RespondPermission(ctx context.Context, sessionID, permissionID string, response types.PermissionResponse) error
}

// HistoryStore is the persisted decision log.
type HistoryStore interface {
	ListDecisions(ctx context.Context) ([]types.PermissionDecision, error)
	AppendDecision(ctx context.Context, decision types.PermissionDecision) error
}

// Engine consults history before surfacing anything to the operator, so a
// remembered "always" grant never flashes a prompt. Requests arriving while
// one is pending queue in arrival order rather than overwriting each other.
type Engine struct {
	client  Responder
	history HistoryStore
	log     logging.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache []types.PermissionDecision
	queue []types.PermissionRequest
}

func NewEngine(client Responder, history HistoryStore, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		client:  client,
		history: history,
		log:     log,
		now:     time.Now,
	}
}

// LoadHistory populates the in-memory cache from the persisted store. A
// failed read degrades to an empty history rather than blocking requests.
func (e *Engine) LoadHistory(ctx context.Context) error {
	decisions, err := e.history.ListDecisions(ctx)
	if err != nil {
		e.log.Warn("failed to load permission history", logging.F("err", err))
		decisions = nil
	}
	e.mu.Lock()
	e.cache = decisions
	e.mu.Unlock()
	return err
}

// HandleRequest routes one incoming request. It returns true when the
// request was auto-approved from history and never became visible; false
// when it is queued and needs operator attention.
func (e *Engine) HandleRequest(ctx context.Context, req types.PermissionRequest) (bool, error) {
	e.mu.Lock()
	auto := shouldAutoApprove(req, e.cache)
	if !auto {
		e.queue = append(e.queue, req)
		depth := len(e.queue)
		e.mu.Unlock()
		e.log.Info("permission request pending",
			logging.F("permission", req.ID),
			logging.F("session", req.SessionID),
			logging.F("type", string(req.Type)),
			logging.F("queued", depth))
		return false, nil
	}
	e.mu.Unlock()

	if err := e.client.RespondPermission(ctx, req.SessionID, req.ID, types.ResponseAlways); err != nil {
		e.log.Error("auto-approval failed", logging.F("permission", req.ID), logging.F("err", err))
		return true, err
	}
	e.log.Info("permission auto-approved",
		logging.F("permission", req.ID),
		logging.F("session", req.SessionID),
		logging.F("type", string(req.Type)))
	return true, nil
}

// Pending returns the request currently awaiting the operator, if any.
func (e *Engine) Pending() (types.PermissionRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return types.PermissionRequest{}, false
	}
	return e.queue[0], true
}

// QueueLen reports how many requests are waiting, the visible one included.
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Respond sends the operator's decision for the pending request. On success,
// always and reject decisions are appended to history (once is not), the
// cache reloads, and the next queued request becomes pending. If the server
// rejects the send, the pending request stays put and nothing is recorded,
// so the operator can retry. If the server accepts but recording the
// decision fails, the request is cleared and the append error is returned:
// the remembered trust was lost, and the caller must be told.
func (e *Engine) Respond(ctx context.Context, response types.PermissionResponse) error {
	if !response.Valid() {
		return errors.New("permission response must be once, always or reject")
	}
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return ErrNoPendingRequest
	}
	head := e.queue[0]
	e.mu.Unlock()

	if err := e.client.RespondPermission(ctx, head.SessionID, head.ID, response); err != nil {
		return err
	}

	var recordErr error
	if response == types.ResponseAlways || response == types.ResponseReject {
		decision := types.PermissionDecision{
			ID:        head.ID,
			SessionID: head.SessionID,
			Type:      head.Type,
			Response:  response,
			Timestamp: e.now().UnixMilli(),
		}
		if err := e.history.AppendDecision(ctx, decision); err != nil {
			e.log.Error("failed to record permission decision",
				logging.F("permission", head.ID),
				logging.F("err", err))
			recordErr = fmt.Errorf("record permission decision: %w", err)
		} else {
			_ = e.LoadHistory(ctx)
		}
	}

	// The server already has the response, so the request is settled even
	// when recording the decision failed.
	e.popHead(head.ID)
	return recordErr
}

func (e *Engine) ApproveOnce(ctx context.Context) error {
	return e.Respond(ctx, types.ResponseOnce)
}

func (e *Engine) ApproveAlways(ctx context.Context) error {
	return e.Respond(ctx, types.ResponseAlways)
}

func (e *Engine) Deny(ctx context.Context) error {
	return e.Respond(ctx, types.ResponseReject)
}

// Dismiss drops the pending request without contacting the server. It is a
// UI dismissal, not a rejection.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return
	}
	dropped := e.queue[0]
	e.queue = e.queue[1:]
	e.log.Debug("permission request dismissed", logging.F("permission", dropped.ID))
}

func (e *Engine) popHead(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) > 0 && e.queue[0].ID == id {
		e.queue = e.queue[1:]
	}
}

// Bind subscribes the engine to permission.request events. The returned
// func detaches it.
func (e *Engine) Bind(ctx context.Context, b *bus.Bus) func() {
	sub := b.Subscribe(types.EventPermissionRequest, func(event types.StreamEvent) {
		var req types.PermissionRequest
		if err := event.DecodeProperties(&req); err != nil {
			e.log.Warn("undecodable permission request", logging.F("err", err))
			return
		}
		if req.ID == "" || req.SessionID == "" {
			e.log.Warn("permission request missing id or session")
			return
		}
		if req.Timestamp == 0 {
			req.Timestamp = e.now().UnixMilli()
		}
		_, _ = e.HandleRequest(ctx, req)
	})
	return func() { b.Unsubscribe(sub) }
}

// shouldAutoApprove reports whether history holds an always grant for the
// same session and request type. Reject entries are recorded but never
// consulted here; only always drives automatic behavior.
func shouldAutoApprove(req types.PermissionRequest, history []types.PermissionDecision) bool {
	for _, decision := range history {
		if decision.SessionID == req.SessionID &&
			decision.Type == req.Type &&
			decision.Response == types.ResponseAlways {
			return true
		}
	}
	return false
}
