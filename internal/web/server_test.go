package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/storage/decisions"
)

type fakeStore struct {
	decisions map[string]*domain.Decision
	approved  []string
	rejected  []string
	acked     map[string]int
}

func newFakeStore(ds ...*domain.Decision) *fakeStore {
	s := &fakeStore{decisions: make(map[string]*domain.Decision), acked: make(map[string]int)}
	for _, d := range ds {
		s.decisions[d.ID] = d
	}
	return s
}

func (s *fakeStore) Create(ctx context.Context, d *domain.Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.ID = "generated-id"
	d.Status = domain.StatusPending
	s.decisions[d.ID] = d
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id, orgID string) (*domain.Decision, error) {
	d, ok := s.decisions[id]
	if !ok || d.OrgID != orgID {
		return nil, decisions.ErrNotFound
	}
	return d, nil
}

func (s *fakeStore) ListPending(ctx context.Context, orgID string) ([]*domain.Decision, error) {
	var out []*domain.Decision
	for _, d := range s.decisions {
		if d.OrgID == orgID && d.Status == domain.StatusPending {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) Approve(ctx context.Context, id, orgID, reviewer string) error {
	d, ok := s.decisions[id]
	if !ok {
		return decisions.ErrNotFound
	}
	if d.Status != domain.StatusPending {
		return decisions.ErrInvalidTransition
	}
	d.Status = domain.StatusApproved
	s.approved = append(s.approved, id+":"+reviewer)
	return nil
}

func (s *fakeStore) Reject(ctx context.Context, id, orgID, reviewer string) error {
	d, ok := s.decisions[id]
	if !ok {
		return decisions.ErrNotFound
	}
	if d.Status != domain.StatusPending {
		return decisions.ErrInvalidTransition
	}
	d.Status = domain.StatusRejected
	s.rejected = append(s.rejected, id)
	return nil
}

func (s *fakeStore) Acknowledge(ctx context.Context, id, orgID string, rating int) error {
	if _, ok := s.decisions[id]; !ok {
		return decisions.ErrNotFound
	}
	s.acked[id] = rating
	return nil
}

type fakeExecutor struct {
	result domain.Payload
	err    error
}

func (f *fakeExecutor) ExecuteDecision(ctx context.Context, id, orgID string) (domain.Payload, error) {
	return f.result, f.err
}

func pendingDecision(id string) *domain.Decision {
	return &domain.Decision{
		ID:         id,
		OrgID:      "org1",
		Platform:   domain.PlatformGoogle,
		EntityType: "campaign",
		EntityID:   "c1",
		Tool:       "set_status",
		Params:     domain.Params{"status": "PAUSED"},
		Status:     domain.StatusPending,
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Org-ID", "org1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateDecision(t *testing.T) {
	store := newFakeStore()
	s := NewServer(":0", store, &fakeExecutor{}, nil, zap.NewNop())

	body := `{"platform":"google","entity_type":"campaign","entity_id":"c1","tool":"set_status","parameters":{"status":"PAUSED"}}`
	rec := doRequest(t, s.Router(), http.MethodPost, "/api/decisions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "generated-id", created.ID)
	require.Equal(t, "org1", created.OrgID, "org id comes from the header, not the body")
	require.Equal(t, domain.StatusPending, created.Status)
}

func TestCreateRequiresOrgHeader(t *testing.T) {
	s := NewServer(":0", newFakeStore(), &fakeExecutor{}, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/decisions", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDecision(t *testing.T) {
	store := newFakeStore(pendingDecision("d1"))
	s := NewServer(":0", store, &fakeExecutor{}, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodGet, "/api/decisions/d1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s.Router(), http.MethodGet, "/api/decisions/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveAndReject(t *testing.T) {
	store := newFakeStore(pendingDecision("d1"), pendingDecision("d2"))
	s := NewServer(":0", store, &fakeExecutor{}, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d1/approve", `{"reviewer":"alex"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"d1:alex"}, store.approved)

	// approving twice conflicts
	rec = doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d1/approve", `{"reviewer":"alex"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d2/reject", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"d2"}, store.rejected)
}

func TestAcknowledge(t *testing.T) {
	store := newFakeStore(pendingDecision("d1"))
	s := NewServer(":0", store, &fakeExecutor{}, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d1/acknowledge", `{"rating":4}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 4, store.acked["d1"])
}

func TestExecuteReturnsResult(t *testing.T) {
	store := newFakeStore(pendingDecision("d1"))
	executor := &fakeExecutor{result: domain.Payload{"entity_id": "c1", "status": "PAUSED"}}
	s := NewServer(":0", store, executor, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d1/execute", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "PAUSED", result["status"])
}

func TestExecuteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.NewValidationError("bad params"), http.StatusBadRequest, "validation_error"},
		{domain.NewUnsupportedOperationError("no route"), http.StatusBadRequest, "unsupported_operation"},
		{domain.NewConnectionInactiveError("org1", domain.PlatformGoogle), http.StatusConflict, "connection_inactive"},
		{domain.NewConfigurationError("no token"), http.StatusInternalServerError, "configuration_error"},
		{domain.NewExternalAPIError(nil, "platform down"), http.StatusBadGateway, "external_api_error"},
		{domain.NewRollbackFailureError("c1", 7000, nil), http.StatusBadGateway, "rollback_failure"},
	}
	for _, c := range cases {
		s := NewServer(":0", newFakeStore(pendingDecision("d1")), &fakeExecutor{err: c.err}, nil, zap.NewNop())
		rec := doRequest(t, s.Router(), http.MethodPost, "/api/decisions/d1/execute", "")
		require.Equal(t, c.wantStatus, rec.Code, c.wantCode)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, c.wantCode, body["code"])
	}
}

func TestListPending(t *testing.T) {
	store := newFakeStore(pendingDecision("d1"))
	s := NewServer(":0", store, &fakeExecutor{}, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodGet, "/api/decisions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestStreamUnavailableWithoutAuditLog(t *testing.T) {
	s := NewServer(":0", newFakeStore(), &fakeExecutor{}, nil, zap.NewNop())

	rec := doRequest(t, s.Router(), http.MethodGet, "/api/executions/stream", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
