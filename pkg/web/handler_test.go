package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ykjam/azulgw/pkg"
	"ykjam/azulgw/pkg/azul/response"
)

type stubSecureService struct {
	sessions      map[string]pkg.SessionData
	methodResult  pkg.SecureResult
	methodErr     error
	methodCalls   int
	challengeErr  error
	challengeRes  pkg.SecureResult
	lastOrderId   string
	lastSessionId string
}

func (s *stubSecureService) SecureSale(_ context.Context, _ pkg.SecureSaleRequest) (pkg.SecureResult, error) {
	return pkg.SecureResult{Redirect: false, SessionId: "session-1"}, nil
}

func (s *stubSecureService) SecureHold(_ context.Context, _ pkg.SecureSaleRequest) (pkg.SecureResult, error) {
	return pkg.SecureResult{}, nil
}

func (s *stubSecureService) ProcessMethodNotification(_ context.Context, azulOrderId, _ string) (pkg.SecureResult, error) {
	s.methodCalls++
	s.lastOrderId = azulOrderId
	return s.methodResult, s.methodErr
}

func (s *stubSecureService) ProcessChallengeResponse(_ context.Context, sessionId, _ string) (pkg.SecureResult, error) {
	s.lastSessionId = sessionId
	return s.challengeRes, s.challengeErr
}

func (s *stubSecureService) GetSessionInfo(sessionId string) (pkg.SessionData, bool) {
	data, ok := s.sessions[sessionId]
	return data, ok
}

func TestMethodNotificationRequiresCorrelationParameter(t *testing.T) {
	stub := &stubSecureService{sessions: map[string]pkg.SessionData{}}
	hc := NewHandlerContext(stub)

	r := httptest.NewRequest(http.MethodPost, "/callback/method", nil)
	w := httptest.NewRecorder()
	hc.HandleMethodNotification(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, stub.methodCalls, "uncorrelated callback must not reach the coordinator")
}

func TestMethodNotificationRoutesByOrderId(t *testing.T) {
	stub := &stubSecureService{
		sessions: map[string]pkg.SessionData{
			"session-1": {AzulOrderId: "12345", State: pkg.SessionStateMethodPending},
		},
		methodResult: pkg.SecureResult{Redirect: true, Html: "<form></form>"},
	}
	hc := NewHandlerContext(stub)

	r := httptest.NewRequest(http.MethodPost, "/callback/method?secure_id=session-1", nil)
	w := httptest.NewRecorder()
	hc.HandleMethodNotification(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", stub.lastOrderId)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<form")
}

func TestMethodNotificationUnknownSession(t *testing.T) {
	stub := &stubSecureService{sessions: map[string]pkg.SessionData{}}
	hc := NewHandlerContext(stub)

	r := httptest.NewRequest(http.MethodPost, "/callback/method?secure_id=ghost", nil)
	w := httptest.NewRecorder()
	hc.HandleMethodNotification(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChallengeCallbackRequiresCres(t *testing.T) {
	stub := &stubSecureService{sessions: map[string]pkg.SessionData{}}
	hc := NewHandlerContext(stub)

	r := httptest.NewRequest(http.MethodPost, "/callback/term?secure_id=session-1", nil)
	w := httptest.NewRecorder()
	hc.HandleChallengeCallback(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChallengeCallbackPassesCres(t *testing.T) {
	stub := &stubSecureService{
		sessions: map[string]pkg.SessionData{},
		challengeRes: pkg.SecureResult{
			SessionId: "session-1",
			Response:  &response.Gateway{ResponseMessage: response.MessageApproved, IsoCode: "00"},
		},
	}
	hc := NewHandlerContext(stub)

	form := url.Values{}
	form.Set("cres", "cres123")
	r := httptest.NewRequest(http.MethodPost, "/callback/term?secure_id=session-1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	hc.HandleChallengeCallback(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-1", stub.lastSessionId)
	assert.Contains(t, w.Body.String(), "APROBADA")
}

func TestChallengeCallbackUnknownSession(t *testing.T) {
	stub := &stubSecureService{
		sessions:     map[string]pkg.SessionData{},
		challengeErr: pkg.ErrSessionNotFound,
	}
	hc := NewHandlerContext(stub)

	form := url.Values{}
	form.Set("cres", "cres123")
	r := httptest.NewRequest(http.MethodPost, "/callback/term?secure_id=ghost", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	hc.HandleChallengeCallback(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionInfo(t *testing.T) {
	stub := &stubSecureService{
		sessions: map[string]pkg.SessionData{
			"session-1": {AzulOrderId: "12345", State: pkg.SessionStateChallengePending},
		},
	}
	hc := NewHandlerContext(stub)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/session-info?secure_id=session-1", nil)
	w := httptest.NewRecorder()
	hc.HandleSessionInfo(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CHALLENGE_PENDING")

	r = httptest.NewRequest(http.MethodGet, "/api/v1/session-info", nil)
	w = httptest.NewRecorder()
	hc.HandleSessionInfo(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecureSaleRejectsInvalidInput(t *testing.T) {
	stub := &stubSecureService{sessions: map[string]pkg.SessionData{}}
	hc := NewHandlerContext(stub)

	form := url.Values{}
	form.Set("order-number", "order-0001")
	form.Set("amount", "not-a-number")
	form.Set("card-number", "4111111111111111")
	form.Set("card-expiry", "202812")
	r := httptest.NewRequest(http.MethodPost, "/api/v1/secure-sale", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	hc.HandleSecureSale(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
