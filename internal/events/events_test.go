package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/streadway/amqp"

	"github.com/JonMunkholm/StudioUsers/internal/config"
)

type sent struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []sent
	err    error
	closed bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "studio.users")
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	payload := map[string]any{"created": 2, "actor": "admin"}
	if err := p.Publish(context.Background(), "users.imported", payload); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(ch.sent))
	}
	got := ch.sent[0]
	if got.exchange != "studio.users" || got.key != "users.imported" {
		t.Errorf("exchange/key = %s/%s", got.exchange, got.key)
	}
	if got.msg.ContentType != "application/json" || got.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("message properties = %+v", got.msg)
	}
	if got.msg.MessageId == "" || !got.msg.Timestamp.Equal(at) || got.msg.Type != "users.imported" {
		t.Errorf("message metadata = id %q ts %v type %q", got.msg.MessageId, got.msg.Timestamp, got.msg.Type)
	}

	var body map[string]any
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	want := map[string]any{"created": float64(2), "actor": "admin"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestAMQPPublisher_Errors(t *testing.T) {
	t.Run("broker error wrapped", func(t *testing.T) {
		brokerErr := errors.New("channel closed")
		p := newPublisher(&fakeChannel{err: brokerErr}, "x")
		if err := p.Publish(context.Background(), "k", 1); !errors.Is(err, brokerErr) {
			t.Errorf("error = %v, want wrapping %v", err, brokerErr)
		}
	})

	t.Run("unencodable payload", func(t *testing.T) {
		ch := &fakeChannel{}
		p := newPublisher(ch, "x")
		if err := p.Publish(context.Background(), "k", make(chan int)); err == nil {
			t.Error("expected encode error")
		}
		if len(ch.sent) != 0 {
			t.Error("message sent despite encode error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch := &fakeChannel{}
		p := newPublisher(ch, "x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := p.Publish(ctx, "k", 1); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("after close", func(t *testing.T) {
		ch := &fakeChannel{}
		p := newPublisher(ch, "x")
		if err := p.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !ch.closed {
			t.Error("channel not closed")
		}
		if err := p.Publish(context.Background(), "k", 1); err == nil {
			t.Error("expected error after close")
		}
		if err := p.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	if err := p.Publish(context.Background(), "k", nil); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestConnect(t *testing.T) {
	p, err := Connect(config.EventsConfig{Exchange: "studio.users"})
	if err != nil {
		t.Fatalf("Connect without URL: %v", err)
	}
	if _, ok := p.(NopPublisher); !ok {
		t.Errorf("publisher = %T, want NopPublisher", p)
	}

	if _, err := Connect(config.EventsConfig{AMQPURL: "not-a-url", Exchange: "x"}); err == nil {
		t.Error("expected error for an invalid broker URL")
	}
}
