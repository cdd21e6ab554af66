package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

func fastConfig(hooks ...HookConfig) Config {
	return Config{Hooks: hooks, MaxRetries: 2, RetryDelay: time.Millisecond, Timeout: time.Second}
}

func TestNotifyInstallComplete(t *testing.T) {
	var got Event
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		signature = r.Header.Get("X-Shimctl-Signature")
		assert.Equal(t, Sign(body, "s3cret"), signature)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewNotifier(fastConfig(HookConfig{URL: server.URL, Secret: "s3cret", Events: []EventType{EventInstallComplete}}), nil)
	err := n.NotifyInstall(context.Background(), &model.InstallReport{
		InstallID:     "id-1",
		Destination:   "/opt/pentaho/mapreduce",
		State:         model.StateLockReleased,
		StagedEntries: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, EventInstallComplete, got.Event)
	assert.Equal(t, "id-1", got.InstallID)
	assert.Equal(t, 4, got.StagedEntries)
	assert.NotEmpty(t, got.Timestamp)
	assert.Contains(t, signature, "sha256=")
}

func TestNotifyInstallFailedFiltersSubscriptions(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	n := NewNotifier(fastConfig(
		HookConfig{URL: server.URL, Events: []EventType{EventInstallComplete}},
		HookConfig{URL: server.URL, Events: []EventType{EventAll}},
	), nil)
	err := n.NotifyInstall(context.Background(), &model.InstallReport{State: model.StateStagingPlugin, Error: "boom"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSendRetriesThenFails(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := NewNotifier(fastConfig(HookConfig{URL: server.URL, Events: []EventType{EventAll}}), nil)
	err := n.Send(context.Background(), Event{Event: EventInstallComplete})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 503")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendRecoversAfterRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(fastConfig(HookConfig{URL: server.URL, Events: []EventType{EventAll}}), nil)
	require.NoError(t, n.Send(context.Background(), Event{Event: EventInstallFailed}))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestNoHooksIsNoop(t *testing.T) {
	n := NewNotifier(DefaultConfig(), nil)
	assert.NoError(t, n.NotifyInstall(context.Background(), &model.InstallReport{}))
	assert.NoError(t, n.NotifyInstall(context.Background(), nil))
}

func TestEventFromReport(t *testing.T) {
	ev := EventFromReport(&model.InstallReport{State: model.StateLockAcquired, Error: "x"})
	assert.Equal(t, EventInstallFailed, ev.Event)
	assert.Equal(t, "x", ev.Error)

	ev = EventFromReport(&model.InstallReport{State: model.StateLockReleased, DriverSkips: []string{"d.jar"}})
	assert.Equal(t, EventInstallComplete, ev.Event)
	assert.Equal(t, []string{"d.jar"}, ev.DriverSkips)
}
