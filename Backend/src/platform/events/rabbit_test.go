package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDisabledPublisher(t *testing.T) {
	r, err := NewRabbit("", "smartkart.events")
	if err != nil || r != nil {
		t.Fatalf("empty url should disable events, got %v %v", r, err)
	}
	if err := r.Publish(context.Background(), RKCartUpdated, map[string]string{"userId": "u1"}); err != nil {
		t.Fatalf("nil publisher must drop silently: %v", err)
	}
	r.Close()
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	body, err := Encode(RKProductCreated, map[string]string{"id": "p1"}, at)
	if err != nil {
		t.Fatal(err)
	}
	var env struct {
		ID        string            `json:"id"`
		Type      string            `json:"type"`
		Timestamp time.Time         `json:"timestamp"`
		Payload   map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Fatalf("id is not a uuid: %q", env.ID)
	}
	if env.Type != RKProductCreated || !env.Timestamp.Equal(at) || env.Payload["id"] != "p1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}
