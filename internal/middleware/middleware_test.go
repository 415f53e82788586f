package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crossword-extravaganza/internal/testutil"
)

type MiddlewareSuite struct {
	suite.Suite
	buf    *testutil.LogBuffer
	logger *slog.Logger
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.logger, s.buf = testutil.BufferLogger()
}

func (s *MiddlewareSuite) TestLoggingAssignsRequestID() {
	var seen string
	h := Logging(s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	s.NotEmpty(seen)
	s.Equal(seen, rec.Header().Get(RequestIDHeader))
	s.Contains(s.buf.String(), `"status":418`)
	s.Contains(s.buf.String(), seen)
}

func (s *MiddlewareSuite) TestLoggingKeepsIncomingRequestID() {
	h := Logging(s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	s.Equal("abc-123", rec.Header().Get(RequestIDHeader))
}

func (s *MiddlewareSuite) TestHijackUnsupported() {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rw.Hijack()
	s.Error(err)
	s.False(rw.Hijacked())
}

func (s *MiddlewareSuite) TestRecoveryDefaultsToPlain500() {
	h := Recovery(s.logger, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	s.NotPanics(func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(s.buf.String(), "panic recovered")
}

func (s *MiddlewareSuite) TestRecoveryCallsPanicHandler() {
	var got any
	onPanic := func(w http.ResponseWriter, _ *http.Request, err any) {
		got = err
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	h := Recovery(s.logger, onPanic)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("boom", got)
}

func (s *MiddlewareSuite) TestRecoverySkipsHijackedWriter() {
	called := false
	onPanic := func(http.ResponseWriter, *http.Request, any) { called = true }
	h := Recovery(s.logger, onPanic)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(*ResponseWriter).hijacked = true
		panic("after upgrade")
	}))

	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder()}
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/ws", nil))
	s.False(called)
	s.Contains(s.buf.String(), "after upgrade")
}
