// Package health reports whether the portal can reach its database, over the
// standard gRPC health protocol and as a plain HTTP probe.
package health

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"hospital-portal/internal/logging"
)

// Service is the name probes can ask about in addition to "" (the whole
// server).
const Service = "hospital.Portal"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	srv     *health.Server
	db      Pinger
	log     logging.Logger
	timeout time.Duration
}

// New returns a checker that starts out NOT_SERVING until the first Probe.
func New(db Pinger, log logging.Logger) *Checker {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Checker{srv: srv, db: db, log: log, timeout: 2 * time.Second}
}

// Register exposes the health service on a gRPC server.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.srv)
}

// Probe pings the database and publishes the result.
func (c *Checker) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.db.Ping(ctx); err != nil {
		c.log.Warn(ctx, "database ping failed", "err", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.srv.SetServingStatus("", status)
	c.srv.SetServingStatus(Service, status)
	return status
}

// Run probes once immediately and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.Probe(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Probe(ctx)
		}
	}
}

// Status returns the last published status for the whole server.
func (c *Checker) Status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	resp, err := c.srv.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

// ServeHTTP answers 200 while serving and 503 otherwise.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := c.Status(r.Context())
	code := http.StatusOK
	if status != healthpb.HealthCheckResponse_SERVING {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(status.String() + "\n"))
}

// Shutdown marks every service NOT_SERVING so watchers drain before the
// server stops.
func (c *Checker) Shutdown() {
	c.srv.Shutdown()
}
