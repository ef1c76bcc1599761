package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"uncss/internal/logging"
	"uncss/internal/reduction"
	"uncss/internal/server"
	"uncss/internal/submission"
	"uncss/internal/uncss"
)

// exitError carries the process exit code of a failed reduction.
type exitError struct {
	code int
	err  *reduction.Error
}

func (e *exitError) Error() string {
	return fmt.Sprintf("%s: %s", e.err.Name(), e.err.Message)
}

func (e *exitError) Unwrap() error { return e.err }

// Exit codes per failure category
const (
	exitValidation = 2
	exitService    = 3
	exitTransport  = 4
)

func newExitError(err *reduction.Error) *exitError {
	code := exitTransport
	switch err.Kind {
	case reduction.KindValidation:
		code = exitValidation
	case reduction.KindService:
		code = exitService
	}
	return &exitError{code: code, err: err}
}

// localReducer runs the reduction in-process, classifying failures the way
// the HTTP service does.
type localReducer struct {
	opts uncss.Options
}

func (l localReducer) Reduce(ctx context.Context, html, css string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", reduction.Transport(err)
	}
	out, err := uncss.Reduce(html, css, l.opts)
	if err != nil {
		return "", reduction.Service(err.Error())
	}
	return out, nil
}

// newClient returns a client for the configured endpoint. Without one it
// starts an embedded server on a loopback port that lives until ctx ends;
// wait blocks until that server has stopped.
func newClient(ctx context.Context) (client *reduction.Client, wait func() error, err error) {
	wait = func() error { return nil }

	url := cfg.Service.Endpoint
	if cfg.Embedded() {
		srv, err := server.New(server.Config{
			ListenAddr:      "127.0.0.1:0",
			MaxBodyBytes:    cfg.Server.MaxBodyBytes,
			ShutdownTimeout: cfg.GetShutdownTimeout(),
			Ignore:          cfg.Server.Ignore,
		}, logging.For(logger, logging.CategoryServer))
		if err != nil {
			return nil, nil, err
		}
		if _, err := srv.Listen(); err != nil {
			return nil, nil, err
		}

		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()
		wait = func() error { return <-done }

		url = srv.Endpoint()
		logging.For(logger, logging.CategoryBoot).Debug("embedded reduction service started", zap.String("endpoint", url))
	}

	client, err = reduction.NewClient(url,
		reduction.WithTimeout(cfg.GetServiceTimeout()),
		reduction.WithLogger(logging.For(logger, logging.CategoryReduction)),
	)
	if err != nil {
		return nil, wait, err
	}
	return client, wait, nil
}

// runOnce drives one submission through a controller and returns its
// terminal state.
func runOnce(ctx context.Context, reducer submission.Reducer, in submission.Input) (string, error) {
	ctrl := submission.New(reducer, submission.WithLogger(logging.For(logger, logging.CategorySubmission)))
	defer ctrl.Close()

	states, cancel := ctrl.Subscribe()
	defer cancel()

	ctrl.Submit(in)
	for {
		select {
		case s, ok := <-states:
			if !ok {
				return "", newExitError(reduction.Transportf("submission closed"))
			}
			switch s.Phase {
			case submission.Succeeded:
				return s.Output, nil
			case submission.Failed:
				return "", newExitError(s.Err)
			}
		case <-ctx.Done():
			return "", newExitError(reduction.Transport(ctx.Err()))
		}
	}
}
