package kafka

import (
	"encoding/json"
	"testing"
)

type sample struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(MustMarshal(sample{ID: "p-1", Qty: 3}))
	got, err := UnwrapPayload[sample](raw)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if got.ID != "p-1" || got.Qty != 3 {
		t.Fatalf("got %+v", got)
	}

	if _, err := UnwrapPayload[sample](json.RawMessage(`{"id":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
