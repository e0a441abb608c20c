// Package mockbackend serves the targets REST API from memory so the client
// can run without a server. The same router as the real backend is used, so
// status codes and error bodies are identical.
package mockbackend

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/config"
	"github.com/sebasr/target-manager/internal/factory"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/repository"
	"github.com/sebasr/target-manager/internal/server"
)

// DefaultSeedCount is the number of synthetic targets a new backend holds.
const DefaultSeedCount = 5

// Options configures a Backend.
type Options struct {
	SeedCount int    // zero means DefaultSeedCount, negative starts empty
	Seed      uint64 // random source seed; zero is non-deterministic
	Version   string
	Logger    *logrus.Logger
}

// Backend is an in-memory targets API. It implements http.RoundTripper.
type Backend struct {
	repo    *repository.MemoryTargetRepository
	factory *factory.Factory
	router  *gin.Engine
}

var _ http.RoundTripper = (*Backend)(nil)

// New builds a backend seeded with synthetic targets.
func New(opts Options) (*Backend, error) {
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}

	b := &Backend{
		repo:    repository.NewMemoryTargetRepository(),
		factory: factory.New(opts.Seed),
	}

	router, err := server.New(&server.Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{
				CORSOrigins: []string{"*"},
				Version:     version,
			},
		},
		TargetRepo: b.repo,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	b.router = router

	count := opts.SeedCount
	if count == 0 {
		count = DefaultSeedCount
	}
	if count > 0 {
		b.Seed(count)
	}
	return b, nil
}

// Reset replaces the collection with targets, which may be empty.
func (b *Backend) Reset(targets ...models.Target) {
	b.repo.Reset(targets...)
}

// Seed appends n generated targets and returns them.
func (b *Backend) Seed(n int) []models.Target {
	targets := b.factory.Targets(n)
	b.repo.Seed(targets...)
	return targets
}

// Targets returns a snapshot of the collection in insertion order.
func (b *Backend) Targets() []models.Target {
	return b.repo.Snapshot()
}

// Handler exposes the backend as an http.Handler, e.g. for httptest.NewServer.
func (b *Backend) Handler() http.Handler {
	return b.router
}

// Transport returns the backend for use as an http.Client transport.
func (b *Backend) Transport() http.RoundTripper {
	return b
}

// RoundTrip serves req in-process.
func (b *Backend) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	// The handler may consume the body; never touch the caller's request.
	r := req.Clone(req.Context())
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
	}
	if r.RemoteAddr == "" {
		r.RemoteAddr = "127.0.0.1:0"
	}
	if r.RequestURI == "" {
		r.RequestURI = r.URL.RequestURI()
	}

	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, r)

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
