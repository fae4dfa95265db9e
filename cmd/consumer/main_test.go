package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	stopped chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	close(r.stopped)
	return ctx.Err()
}

type failingRunner struct {
	err error
}

func (r failingRunner) Run(context.Context) error { return r.err }

func TestRunProcessorsCancelsPeersOnFailure(t *testing.T) {
	sinkErr := errors.New("dead-letter offset 7: postgres unavailable")
	peer := &blockingRunner{stopped: make(chan struct{})}

	err := runProcessors(context.Background(), []runner{peer, failingRunner{err: sinkErr}})
	require.ErrorIs(t, err, sinkErr)

	select {
	case <-peer.stopped:
	case <-time.After(time.Second):
		t.Fatal("peer processor was not cancelled")
	}
}

func TestRunProcessorsTreatsShutdownAsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	peers := []runner{&blockingRunner{stopped: make(chan struct{})}, &blockingRunner{stopped: make(chan struct{})}}

	done := make(chan error, 1)
	go func() { done <- runProcessors(ctx, peers) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("processors did not stop")
	}
}
