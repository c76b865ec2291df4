package pprofserver

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	Handle(mux)
	return mux
}

func newServer(logger *slog.Logger) *http.Server {
	return &http.Server{ //nolint:exhaustruct // defaults are fine for a loopback debug server.
		Handler:           newServeMux(),
		ReadHeaderTimeout: time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// Launch serves pprof on addr until ctx is done. The listener is opened before Launch returns so that a busy
// address is reported to the caller.
//
// addr should be a loopback address such as localhost:6060 so that the profiles are not open to the world.
func Launch(ctx context.Context, addr string, logger *slog.Logger) (net.Addr, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "pprof listen", slog.String("addr", addr))
	}
	srv := newServer(logger)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("addr", listener.Addr().String()))
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = errors.Wrap(serveErr, "pprof serve")
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped", errors.SlogError(serveErr))
		}
	}()
	return listener.Addr(), nil
}
