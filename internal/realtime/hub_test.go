package realtime

import (
	"encoding/json"
	"testing"
)

func newTestClient(signageID, id string) *Client {
	return &Client{
		ID:        id,
		SignageID: signageID,
		send:      make(chan []byte, sendBuffer),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-c.send:
			out = append(out, p)
		default:
			return out
		}
	}
}

func TestRegisterSendsConnectedAck(t *testing.T) {
	h := NewHub(nil, nil, nil)
	c := newTestClient("X", "c1")
	h.Register(c)

	msgs := drain(c)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 connected ack", len(msgs))
	}
	var ack ConnectedMessage
	if err := json.Unmarshal(msgs[0], &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.Type != TypeConnected || ack.SignageID != "X" {
		t.Errorf("ack = %+v, want connected for X", ack)
	}
}

func TestBroadcastReachesAllInstanceViewersOnly(t *testing.T) {
	h := NewHub(nil, nil, nil)
	x1 := newTestClient("X", "x1")
	x2 := newTestClient("X", "x2")
	y1 := newTestClient("Y", "y1")
	for _, c := range []*Client{x1, x2, y1} {
		h.Register(c)
		drain(c) // discard connected acks
	}

	h.Broadcast("X", NewSessionStarted())

	for _, c := range []*Client{x1, x2} {
		msgs := drain(c)
		if len(msgs) != 1 {
			t.Fatalf("client %s got %d messages, want 1", c.ID, len(msgs))
		}
		var m SessionStartedMessage
		if err := json.Unmarshal(msgs[0], &m); err != nil || m.Type != TypeSessionStarted {
			t.Errorf("client %s got %s", c.ID, msgs[0])
		}
	}
	if got := drain(y1); len(got) != 0 {
		t.Errorf("instance Y viewer received %d messages, want 0", len(got))
	}
}

func TestBroadcastIdenticalBytesInOrder(t *testing.T) {
	h := NewHub(nil, nil, nil)
	a := newTestClient("X", "a")
	b := newTestClient("X", "b")
	h.Register(a)
	h.Register(b)
	drain(a)
	drain(b)

	h.Broadcast("X", NewQuestionDisplay(0, "Q1?", []string{"A", "B"}, 10, 1234))
	h.Broadcast("X", NewQuestionClear())

	am, bm := drain(a), drain(b)
	if len(am) != 2 || len(bm) != 2 {
		t.Fatalf("got %d/%d messages, want 2 each", len(am), len(bm))
	}
	for i := range am {
		if string(am[i]) != string(bm[i]) {
			t.Errorf("message %d differs between viewers:\n%s\n%s", i, am[i], bm[i])
		}
	}
	var first QuestionDisplayMessage
	if err := json.Unmarshal(am[0], &first); err != nil || first.Type != TypeQuestionDisplay {
		t.Errorf("first message = %s, want question_display", am[0])
	}
	var second QuestionClearMessage
	if err := json.Unmarshal(am[1], &second); err != nil || second.Type != TypeQuestionClear {
		t.Errorf("second message = %s, want question_clear", am[1])
	}
}

func TestUnregisterPrunesEmptyInstance(t *testing.T) {
	h := NewHub(nil, nil, nil)
	c1 := newTestClient("X", "c1")
	c2 := newTestClient("X", "c2")
	h.Register(c1)
	h.Register(c2)

	h.Unregister(c1)
	if got := h.ViewerCount("X"); got != 1 {
		t.Fatalf("ViewerCount = %d, want 1", got)
	}

	h.Unregister(c2)
	if got := h.ViewerCount("X"); got != 0 {
		t.Fatalf("ViewerCount = %d, want 0", got)
	}
	h.mu.RLock()
	_, exists := h.instances["X"]
	h.mu.RUnlock()
	if exists {
		t.Error("empty instance entry should be pruned")
	}

	// Broadcasting to a pruned instance is a no-op, not a panic.
	h.Broadcast("X", NewSessionStarted())
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	h := NewHub(nil, nil, nil)
	stalled := &Client{ID: "s", SignageID: "X", send: make(chan []byte)} // unbuffered, no reader
	healthy := newTestClient("X", "h")
	h.Register(stalled)
	h.Register(healthy)
	drain(healthy)

	h.Broadcast("X", NewSessionStarted())

	if got := drain(healthy); len(got) != 1 {
		t.Errorf("healthy viewer got %d messages, want 1", len(got))
	}
}

func TestQuestionDisplayNilOptions(t *testing.T) {
	m := NewQuestionDisplay(1, "Q?", nil, 10, 99)
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["options"].([]interface{}); !ok {
		t.Errorf("options should serialize as an array, got %v", decoded["options"])
	}
}
