package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	verificationhandler "dinehalal/internal/verification/handler"
	"dinehalal/pkg/testutil"
)

type stubRegistry struct {
	loaded bool
	size   int
}

func (s stubRegistry) Loaded() bool { return s.loaded }
func (s stubRegistry) Len() int     { return s.size }

type stubCheck struct {
	err error
}

func (s stubCheck) Health(context.Context) error { return s.err }

type RouterSuite struct {
	suite.Suite
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) newRouter(deps Deps) http.Handler {
	if deps.Verification == nil {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		deps.Verification = verificationhandler.New(nil, logger)
	}
	return NewRouter(deps)
}

func (s *RouterSuite) TestHealthzReportsRegistryState() {
	router := s.newRouter(Deps{
		Registry: stubRegistry{loaded: true, size: 42},
		Checks:   map[string]HealthChecker{"redis": stubCheck{}},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "registry_loaded", true)
	testutil.AssertJSONContains(s.T(), rr, "registry_size", float64(42))
	testutil.AssertJSONContains(s.T(), rr, "redis", "ok")
}

func (s *RouterSuite) TestHealthzUnhealthyDependency() {
	router := s.newRouter(Deps{
		Registry: stubRegistry{},
		Checks:   map[string]HealthChecker{"redis": stubCheck{err: errors.New("down")}},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))

	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(s.T(), rr, "redis", "unhealthy")
}

func (s *RouterSuite) TestMetricsEndpoint() {
	router := s.newRouter(Deps{Registry: stubRegistry{}})

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))

	testutil.AssertStatusOK(s.T(), rr)
}
