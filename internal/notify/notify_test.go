package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func TestFailureCarriesError(t *testing.T) {
	n := Failure("p1", "Save failed", errors.New("disk full"))
	assert.Equal(t, VariantDestructive, n.Variant)
	assert.Equal(t, "disk full", n.Description)
	assert.Equal(t, "p1", n.ProjectID)

	ok := Success("p1", "Saved", "")
	assert.Equal(t, VariantDefault, ok.Variant)
}

func TestMultiSkipsNil(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, nil, b}.Notify(context.Background(), Success("p", "t", ""))
	assert.Len(t, a.seen, 1)
	assert.Len(t, b.seen, 1)
}

func TestHubDeliversPerProject(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe("p1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("p2")
	defer cancel2()

	hub.Notify(context.Background(), Success("p1", "Saved", ""))

	select {
	case n := <-ch1:
		assert.Equal(t, "Saved", n.Title)
	case <-time.After(time.Second):
		t.Fatal("expected notification for p1")
	}
	select {
	case n := <-ch2:
		t.Fatalf("unexpected notification for p2: %+v", n)
	default:
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("p1")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Notify(context.Background(), Success("p1", "n", ""))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubCancel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("p1")
	assert.Equal(t, 1, hub.Subscribers("p1"))

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers("p1"))
	_, open := <-ch
	assert.False(t, open)

	hub.Notify(context.Background(), Success("p1", "after cancel", ""))
}

// fakeToken is a completed pahomqtt.Token.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// pendingToken is a pahomqtt.Token whose delivery never completes until
// release is closed.
type pendingToken struct {
	release chan struct{}
}

func (t *pendingToken) Wait() bool {
	<-t.release
	return true
}

func (t *pendingToken) WaitTimeout(time.Duration) bool {
	<-t.release
	return false
}

func (t *pendingToken) Done() <-chan struct{} { return t.release }
func (t *pendingToken) Error() error          { return nil }

type fakeMQTT struct {
	connected    bool
	publishErr   error
	pending      *pendingToken
	topics       []string
	payloads     [][]byte
	disconnected bool
}

func (f *fakeMQTT) Publish(topic string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	if f.pending != nil {
		return f.pending
	}
	return &fakeToken{err: f.publishErr}
}

func (f *fakeMQTT) IsConnected() bool       { return f.connected }
func (f *fakeMQTT) Disconnect(quiesce uint) { f.disconnected = true }

func TestMQTTNotifierPublishes(t *testing.T) {
	client := &fakeMQTT{connected: true}
	n := newMQTTNotifier(client, "renovo", slog.Default())

	n.Notify(context.Background(), Success("p1", "Statement of work saved", ""))
	n.Close()

	require.Len(t, client.topics, 1)
	assert.Equal(t, "renovo/projects/p1/notifications", client.topics[0])

	var got Notification
	require.NoError(t, json.Unmarshal(client.payloads[0], &got))
	assert.Equal(t, "Statement of work saved", got.Title)
	assert.Equal(t, VariantDefault, got.Variant)
	assert.True(t, client.disconnected)

	// after close notifications are dropped
	n.Notify(context.Background(), Success("p1", "late", ""))
	n.Close()
	assert.Len(t, client.topics, 1)
}

func TestMQTTNotifierDoesNotBlockOnStalledBroker(t *testing.T) {
	release := make(chan struct{})
	client := &fakeMQTT{connected: true, pending: &pendingToken{release: release}}
	n := newMQTTNotifier(client, "renovo", slog.Default())

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		for i := 0; i < mqttQueueSize*2; i++ {
			n.Notify(context.Background(), Failure("p1", "Save failed", errors.New("conflict")))
		}
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on an undelivered publish")
	}

	close(release)
	n.Close()
	assert.True(t, client.disconnected)
	assert.LessOrEqual(t, len(client.topics), mqttQueueSize+1)
}

func TestMQTTNotifierErrors(t *testing.T) {
	offline := newMQTTNotifier(&fakeMQTT{}, "renovo", slog.Default())
	t.Cleanup(offline.Close)
	assert.ErrorIs(t, offline.publish(Success("p1", "t", "")), ErrPublishFailed)

	failing := newMQTTNotifier(&fakeMQTT{connected: true, publishErr: errors.New("broker gone")}, "renovo", slog.Default())
	t.Cleanup(failing.Close)
	assert.ErrorIs(t, failing.publish(Success("p1", "t", "")), ErrPublishFailed)
}
