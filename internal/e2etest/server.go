package e2etest

import (
	"context"
	"fmt"
	"github.com/myrjola/interviewprep/internal/errors"
	"io"
	"log/slog"
)

type Server struct {
	url    string
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "Addr"

// StartServer starts the test server, waits for it to be ready, and return the server URL for testing.
//
// logSink is the writer to which the server logs are written. You usually want to use [io.Discard].
// lookupEnv is a function that returns the value of an environment variable. It has same signature as [os.LookupEnv].
// run is the function that starts the server. We expect the server to log the address it's listening on with
// [LogAddrKey]. The server runs until [Server.Stop] is called.
func StartServer(
	ctx context.Context,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run func(context.Context, *slog.Logger, func(string) (string, bool)) error,
) (*Server, error) {
	ctx, cancel := context.WithCancel(ctx)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	}))

	s := &Server{
		url:    "",
		client: nil,
		cancel: cancel,
		done:   make(chan struct{}),
		err:    nil,
	}
	// Start the server and wait for it to be ready.
	go func() {
		s.err = run(ctx, logger, lookupEnv)
		close(s.done)
	}()
	select {
	case <-s.done:
		cancel()
		if s.err == nil {
			return nil, errors.New("server stopped before it was ready")
		}
		return nil, errors.Wrap(s.err, "server stopped before it was ready")
	case <-ctx.Done():
		<-s.done
		return nil, errors.Wrap(ctx.Err(), "context cancelled")
	case addr := <-addrCh:
		s.url = fmt.Sprintf("http://%s", addr)
		s.client = NewClient(s.url)
		if err := s.client.WaitForReady(ctx, "/api/healthy"); err != nil {
			return nil, errors.Join(errors.Wrap(err, "wait for ready"), s.Stop())
		}
		return s, nil
	}
}

// Stop shuts the server down and returns the error it stopped with.
func (s *Server) Stop() error {
	s.cancel()
	<-s.done
	if s.err != nil {
		return errors.Wrap(s.err, "run server")
	}
	return nil
}

func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}
