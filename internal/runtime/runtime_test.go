package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vpnhouse/songbook/internal/settings"
	"github.com/vpnhouse/songbook/pkg/control"
)

type testService struct {
	running bool
}

func (s *testService) Shutdown() error {
	s.running = false
	return nil
}

func (s *testService) Running() bool {
	return s.running
}

func TestRestart(t *testing.T) {
	var started []*testService
	r := New(&settings.Config{LogLevel: "info"}, func(r *SongbookRuntime) error {
		svc := &testService{running: true}
		started = append(started, svc)
		r.Services.RegisterService("test", svc)
		return nil
	})

	require.NoError(t, r.Start())
	r.ProcessEvents(control.Event{Type: control.EventRestart})

	require.Len(t, started, 2)
	assert.False(t, started[0].Running())
	assert.True(t, started[1].Running())
	assert.False(t, r.Flags.RestartRequired)

	svc, ok := r.Services.Service("test")
	require.True(t, ok)
	assert.Same(t, started[1], svc)

	require.NoError(t, r.Stop())
	assert.False(t, started[1].Running())
}

func TestSetLogLevelEvent(t *testing.T) {
	r := New(&settings.Config{LogLevel: "info"}, func(*SongbookRuntime) error { return nil })
	r.ProcessEvents(control.Event{Type: control.EventSetLogLevel, Info: "debug"})
	r.ProcessEvents(control.Event{Type: control.EventSetLogLevel, Info: "nonsense"})
}
