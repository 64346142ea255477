// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/mapview/internal/config"
	"github.com/ManuGH/mapview/internal/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushWatcher hands its callback to the test so snapshots can be pushed.
type pushWatcher struct {
	push chan func(*config.Config)
}

func (w *pushWatcher) Watch(_ context.Context, fn func(*config.Config)) error {
	w.push <- fn
	return nil
}

// syncBuffer lets the test read log output written by Run's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestApp_RequiresManager(t *testing.T) {
	app := NewApp(log.WithComponent("test"), nil, nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}

func TestApp_RemoteSnapshotsReachHolder(t *testing.T) {
	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(addr), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	holder := config.NewHolder(config.Default(), nil, "")
	remote := &pushWatcher{push: make(chan func(*config.Config), 1)}
	app := NewApp(log.WithComponent("test"), mgr, holder, remote)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	var push func(*config.Config)
	select {
	case push = <-remote.push:
	case <-time.After(2 * time.Second):
		t.Fatal("remote watch not started")
	}

	next, err := config.New("pk.remote", config.Default().Gazetteer(), config.Default().StylePresets())
	require.NoError(t, err)
	push(next)
	assert.Equal(t, "pk.remote", holder.Get().AccessToken())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestApp_LintsPushedSnapshots(t *testing.T) {
	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(addr), Deps{
		Logger:     log.WithComponent("test"),
		APIHandler: http.NotFoundHandler(),
	})
	require.NoError(t, err)

	var out syncBuffer
	holder := config.NewHolder(config.Default(), nil, "")
	remote := &pushWatcher{push: make(chan func(*config.Config), 1)}
	app := NewApp(zerolog.New(&out), mgr, holder, remote)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	var push func(*config.Config)
	select {
	case push = <-remote.push:
	case <-time.After(2 * time.Second):
		t.Fatal("remote watch not started")
	}

	bare, err := config.New("pk.remote", config.Default().Gazetteer(), nil)
	require.NoError(t, err)
	push(bare)

	assert.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, `"event":"config.applied"`) &&
			strings.Contains(s, `"field":"stylePresets"`)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
