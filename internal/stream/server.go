package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/logger"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/physics"
)

const writeTimeout = 5 * time.Second

type Options struct {
	Addr             string
	Rate             float64 // snapshots per second per client, <= 0 means unpaced
	StepsPerSnapshot int
	Dt               float64
}

type Server struct {
	opts      Options
	reg       *prometheus.Registry
	collector *metrics.Collector
	clients   prometheus.Gauge
	snapshots prometheus.Counter
	upgrader  websocket.Upgrader
}

func New(opts Options, reg *prometheus.Registry, collector *metrics.Collector) (*Server, error) {
	if opts.Dt <= 0 || opts.StepsPerSnapshot <= 0 {
		return nil, fmt.Errorf("stream: dt %g, steps per snapshot %d: %w",
			opts.Dt, opts.StepsPerSnapshot, dynamo.ErrInvalidArgument)
	}

	s := &Server{
		opts:      opts,
		reg:       reg,
		collector: collector,
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nbody",
			Name:      "stream_clients",
			Help:      "Connected websocket clients",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nbody",
			Name:      "stream_snapshots_total",
			Help:      "Snapshots written to websocket clients",
		}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if err := reg.Register(s.clients); err != nil {
		return nil, err
	}
	if err := reg.Register(s.snapshots); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down and returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("stream.listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn("stream.upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	s.clients.Inc()
	defer s.clients.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reads only to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	remote := r.RemoteAddr
	logger.L().Info("stream.client_connected", "remote", remote)
	sent, err := s.feed(ctx, conn)
	logger.L().Info("stream.client_disconnected", "remote", remote, "snapshots", sent, "error", err)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// feed owns one kernel for the lifetime of a client. The first snapshot is
// the initial state; each later one is StepsPerSnapshot steps on.
func (s *Server) feed(ctx context.Context, conn *websocket.Conn) (int, error) {
	limit := rate.Inf
	if s.opts.Rate > 0 {
		limit = rate.Limit(s.opts.Rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	sys := physics.NewJovian()
	step := 0
	sent := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return sent, err
		}

		snap := sys.Snapshot(step, s.opts.Dt)
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(snap); err != nil {
			return sent, err
		}
		sent++
		s.snapshots.Inc()

		for i := 0; i < s.opts.StepsPerSnapshot; i++ {
			sys.Advance(s.opts.Dt)
		}
		step += s.opts.StepsPerSnapshot
		if s.collector != nil {
			s.collector.ObserveSteps(s.opts.StepsPerSnapshot)
		}
	}
}
