package permission

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occtl/internal/bus"
	"occtl/internal/logging"
	"occtl/internal/types"
)

type recordedResponse struct {
	SessionID    string
	PermissionID string
	Response     types.PermissionResponse
}

type fakeResponder struct {
	mu        sync.Mutex
	responses []recordedResponse
	err       error
}

func (f *fakeResponder) RespondPermission(ctx context.Context, sessionID, permissionID string, response types.PermissionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, recordedResponse{sessionID, permissionID, response})
	return nil
}

func (f *fakeResponder) sent() []recordedResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedResponse(nil), f.responses...)
}

type memHistory struct {
	mu        sync.Mutex
	decisions []types.PermissionDecision
	appendErr error
}

func (m *memHistory) ListDecisions(ctx context.Context) ([]types.PermissionDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.PermissionDecision(nil), m.decisions...), nil
}

func (m *memHistory) AppendDecision(ctx context.Context, decision types.PermissionDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.decisions = append(m.decisions, decision)
	return nil
}

func (m *memHistory) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.decisions)
}

func newTestEngine(t *testing.T, history *memHistory) (*Engine, *fakeResponder) {
	t.Helper()
	responder := &fakeResponder{}
	e := NewEngine(responder, history, logging.Nop())
	require.NoError(t, e.LoadHistory(context.Background()))
	return e, responder
}

func fileRequest(id, sessionID string) types.PermissionRequest {
	return types.PermissionRequest{
		ID:        id,
		SessionID: sessionID,
		Type:      types.PermissionFile,
		Timestamp: 1000,
	}
}

func TestHandleRequestAutoApprovesFromHistory(t *testing.T) {
	history := &memHistory{decisions: []types.PermissionDecision{
		{ID: "old", SessionID: "s1", Type: types.PermissionFile, Response: types.ResponseAlways, Timestamp: 1},
	}}
	e, responder := newTestEngine(t, history)

	auto, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
	require.NoError(t, err)
	assert.True(t, auto)

	sent := responder.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, recordedResponse{"s1", "p1", types.ResponseAlways}, sent[0])

	_, pending := e.Pending()
	assert.False(t, pending, "auto-approved request must never become pending")
}

func TestHandleRequestDifferentSessionIsNotAutoApproved(t *testing.T) {
	history := &memHistory{decisions: []types.PermissionDecision{
		{ID: "old", SessionID: "s1", Type: types.PermissionFile, Response: types.ResponseAlways, Timestamp: 1},
	}}
	e, responder := newTestEngine(t, history)

	auto, err := e.HandleRequest(context.Background(), fileRequest("p2", "s2"))
	require.NoError(t, err)
	assert.False(t, auto)
	assert.Empty(t, responder.sent())

	head, pending := e.Pending()
	require.True(t, pending)
	assert.Equal(t, "p2", head.ID)
}

func TestRejectHistoryDoesNotAutoDeny(t *testing.T) {
	history := &memHistory{decisions: []types.PermissionDecision{
		{ID: "old", SessionID: "s1", Type: types.PermissionShell, Response: types.ResponseReject, Timestamp: 1},
	}}
	e, responder := newTestEngine(t, history)

	req := types.PermissionRequest{ID: "p3", SessionID: "s1", Type: types.PermissionShell}
	auto, err := e.HandleRequest(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, auto, "reject entries must not drive automatic behavior")
	assert.Empty(t, responder.sent())
}

func TestRespondOnceClearsPendingWithoutHistoryEntry(t *testing.T) {
	history := &memHistory{}
	e, responder := newTestEngine(t, history)

	_, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
	require.NoError(t, err)

	require.NoError(t, e.ApproveOnce(context.Background()))

	sent := responder.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, types.ResponseOnce, sent[0].Response)
	assert.Equal(t, 0, history.count(), "once must not be recorded")

	_, pending := e.Pending()
	assert.False(t, pending)
}

func TestRespondAlwaysAndRejectAppendExactlyOneEntry(t *testing.T) {
	for _, response := range []types.PermissionResponse{types.ResponseAlways, types.ResponseReject} {
		history := &memHistory{}
		e, _ := newTestEngine(t, history)

		_, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
		require.NoError(t, err)

		require.NoError(t, e.Respond(context.Background(), response))
		assert.Equal(t, 1, history.count(), "response %s", response)

		_, pending := e.Pending()
		assert.False(t, pending)
	}
}

func TestRespondFailureKeepsPendingAndHistory(t *testing.T) {
	history := &memHistory{}
	responder := &fakeResponder{err: errors.New("server unavailable")}
	e := NewEngine(responder, history, logging.Nop())
	require.NoError(t, e.LoadHistory(context.Background()))

	_, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
	require.NoError(t, err)

	err = e.ApproveAlways(context.Background())
	require.Error(t, err)

	head, pending := e.Pending()
	require.True(t, pending, "pending request must survive a failed respond")
	assert.Equal(t, "p1", head.ID)
	assert.Equal(t, 0, history.count())
}

func TestRespondSurfacesRecordFailureAfterServerAccepts(t *testing.T) {
	history := &memHistory{appendErr: errors.New("disk full")}
	e, responder := newTestEngine(t, history)

	_, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
	require.NoError(t, err)

	err = e.ApproveAlways(context.Background())
	require.Error(t, err, "a lost always decision must be reported")
	assert.ErrorIs(t, err, history.appendErr)

	sent := responder.sent()
	require.Len(t, sent, 1, "the server response was already delivered")
	assert.Equal(t, 0, history.count())

	_, pending := e.Pending()
	assert.False(t, pending, "the request is settled on the server side")
}

func TestAlwaysDecisionEnablesFutureAutoApproval(t *testing.T) {
	history := &memHistory{}
	e, responder := newTestEngine(t, history)

	_, err := e.HandleRequest(context.Background(), fileRequest("p1", "s1"))
	require.NoError(t, err)
	require.NoError(t, e.ApproveAlways(context.Background()))

	auto, err := e.HandleRequest(context.Background(), fileRequest("p2", "s1"))
	require.NoError(t, err)
	assert.True(t, auto, "second request of same session and type must auto-approve")

	sent := responder.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "p2", sent[1].PermissionID)
}

func TestConcurrentRequestsQueueInOrder(t *testing.T) {
	history := &memHistory{}
	e, _ := newTestEngine(t, history)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := e.HandleRequest(ctx, fileRequest(id, "s1"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, e.QueueLen())

	head, _ := e.Pending()
	assert.Equal(t, "p1", head.ID)

	require.NoError(t, e.ApproveOnce(ctx))
	head, _ = e.Pending()
	assert.Equal(t, "p2", head.ID)

	e.Dismiss()
	head, _ = e.Pending()
	assert.Equal(t, "p3", head.ID)
	assert.Equal(t, 1, e.QueueLen())
}

func TestRespondWithEmptyQueue(t *testing.T) {
	e, _ := newTestEngine(t, &memHistory{})
	err := e.Respond(context.Background(), types.ResponseOnce)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestDismissWithoutPendingIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t, &memHistory{})
	assert.NotPanics(t, e.Dismiss)
}

func TestBindRoutesBusEvents(t *testing.T) {
	history := &memHistory{}
	e, _ := newTestEngine(t, history)
	b := bus.New(logging.Nop())

	detach := e.Bind(context.Background(), b)
	defer detach()

	b.Publish(types.StreamEvent{
		Type:       types.EventPermissionRequest,
		Properties: []byte(`{"id":"p9","sessionID":"s1","type":"command","data":{"command":"rm -rf build"}}`),
	})

	head, pending := e.Pending()
	require.True(t, pending)
	assert.Equal(t, "p9", head.ID)
	assert.Equal(t, types.PermissionCommand, head.Type)
	assert.NotZero(t, head.Timestamp)

	// Malformed payloads are dropped, not queued.
	b.Publish(types.StreamEvent{
		Type:       types.EventPermissionRequest,
		Properties: []byte(`{"sessionID":"s1"}`),
	})
	assert.Equal(t, 1, e.QueueLen())

	detach()
	b.Publish(types.StreamEvent{
		Type:       types.EventPermissionRequest,
		Properties: []byte(`{"id":"p10","sessionID":"s1","type":"file"}`),
	})
	assert.Equal(t, 1, e.QueueLen())
}

func TestFormatMessage(t *testing.T) {
	cases := []struct {
		name string
		req  types.PermissionRequest
		want string
	}{
		{
			name: "server message wins",
			req:  types.PermissionRequest{Type: types.PermissionTool, Message: "custom"},
			want: "custom",
		},
		{
			name: "tool with name",
			req: types.PermissionRequest{
				Type: types.PermissionTool,
				Data: &types.PermissionData{Tool: "grep"},
			},
			want: `Allow the agent to use tool "grep"?`,
		},
		{
			name: "file with path",
			req: types.PermissionRequest{
				Type: types.PermissionFile,
				Data: &types.PermissionData{Path: "/etc/hosts"},
			},
			want: `Allow the agent to access "/etc/hosts"?`,
		},
		{
			name: "command without detail",
			req:  types.PermissionRequest{Type: types.PermissionCommand},
			want: "Allow the agent to execute this command?",
		},
		{
			name: "network",
			req:  types.PermissionRequest{Type: types.PermissionNetwork},
			want: "Allow the agent to make network requests?",
		},
		{
			name: "unknown category",
			req:  types.PermissionRequest{Type: "telemetry"},
			want: "Allow the agent to perform action: telemetry?",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMessage(tc.req))
		})
	}
}
