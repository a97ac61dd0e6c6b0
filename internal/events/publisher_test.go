package events

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/streadway/amqp"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []published
	closed bool
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestPublisherRoutingKeys(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)

	p.BroadcastToSession("s_1", "evaluation_result", map[string]float64{"score": 8})
	p.BroadcastToSession("s_1", "countdown", map[string]int{"timeRemaining": 3})
	p.BroadcastToDashboard("session_finished", map[string]string{"sessionId": "s_1"})

	if len(ch.sent) != 2 {
		t.Fatalf("expected 2 publishes (countdown skipped), got %d", len(ch.sent))
	}
	if ch.sent[0].exchange != Exchange || ch.sent[0].key != "session.s_1" {
		t.Fatalf("unexpected first publish %+v", ch.sent[0])
	}
	if ch.sent[1].key != "dashboard.session_finished" {
		t.Fatalf("unexpected routing key %q", ch.sent[1].key)
	}

	var body struct {
		Type    string             `json:"type"`
		Payload map[string]float64 `json:"payload"`
	}
	if err := json.Unmarshal(ch.sent[0].msg.Body, &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Type != "evaluation_result" || body.Payload["score"] != 8 {
		t.Fatalf("unexpected body %+v", body)
	}
	if ch.sent[0].msg.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", ch.sent[0].msg.ContentType)
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Fatalf("expected channel closed, err=%v", err)
	}
}

type countingTarget struct {
	session, dashboard, disconnect int
}

func (c *countingTarget) BroadcastToSession(string, string, interface{}) { c.session++ }
func (c *countingTarget) BroadcastToDashboard(string, interface{}) { c.dashboard++ }
func (c *countingTarget) DisconnectSession(string) { c.disconnect++ }

func TestFanout(t *testing.T) {
	a, b := &countingTarget{}, &countingTarget{}
	f := Fanout{a, b}

	f.BroadcastToSession("s", "next_question", nil)
	f.BroadcastToDashboard("session_created", nil)
	f.DisconnectSession("s")

	for _, c := range []*countingTarget{a, b} {
		if c.session != 1 || c.dashboard != 1 || c.disconnect != 1 {
			t.Fatalf("unexpected counts %+v", c)
		}
	}
}
