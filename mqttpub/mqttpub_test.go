package mqttpub

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateClientIDIsUniqueAndPrefixed(t *testing.T) {
	a := generateClientID()
	b := generateClientID()
	if !strings.HasPrefix(a, "rfswitch_") || !strings.HasPrefix(b, "rfswitch_") {
		t.Fatalf("client IDs must carry the rfswitch_ prefix, got %q and %q", a, b)
	}
	if a == b {
		t.Fatal("two generated client IDs collided, expected random suffixes")
	}
}

func TestPayloadMarshalsExpectedFields(t *testing.T) {
	p := Payload{ReceiverID: "r1", Value: 0x13, Bits: 6, ProtocolID: 1, Timestamp: 1234}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"receiver_id", "value", "bits", "protocol_id", "timestamp"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("marshaled payload missing key %q: %v", key, m)
		}
	}
}
