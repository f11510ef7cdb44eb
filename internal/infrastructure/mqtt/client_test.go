package mqtt

import (
	"bytes"
	"errors"
	"testing"
)

// These tests exercise validation and state handling without a broker.
// Connection behaviour against a live broker is covered by the
// integration-tagged tests.

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "capture event", got: topics.CaptureEvent("face", "prf-1a2b3c4d"), want: "biofusion/capture/face/prf-1a2b3c4d"},
		{name: "verification outcome", got: topics.VerificationOutcome("voice", "prf-1a2b3c4d"), want: "biofusion/verification/voice/prf-1a2b3c4d"},
		{name: "enrollment status", got: topics.EnrollmentStatus("prf-1a2b3c4d"), want: "biofusion/enrollment/status/prf-1a2b3c4d"},
		{name: "threat feed", got: topics.ThreatFeed("acc-9f8e7d6c"), want: "biofusion/threat/feed/acc-9f8e7d6c"},
		{name: "quantum risk", got: topics.QuantumRisk(), want: "biofusion/quantum/risk"},
		{name: "quantum event", got: topics.QuantumEvent("shor_test"), want: "biofusion/quantum/event/shor_test"},
		{name: "system status", got: topics.SystemStatus(), want: "biofusion/system/status"},
		{name: "all verification outcomes", got: topics.AllVerificationOutcomes(), want: "biofusion/verification/+/+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublishValidation(t *testing.T) {
	client := &Client{}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{name: "empty topic", topic: "", payload: []byte("x"), qos: 1, wantErr: ErrInvalidTopic},
		{name: "invalid qos", topic: "biofusion/quantum/risk", payload: []byte("x"), qos: 3, wantErr: ErrInvalidQoS},
		{name: "oversized payload", topic: "biofusion/quantum/risk", payload: bytes.Repeat([]byte("a"), maxPayloadSize+1), qos: 1, wantErr: ErrPublishFailed},
		{name: "not connected", topic: "biofusion/quantum/risk", payload: []byte("x"), qos: 1, wantErr: ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("biofusion/#", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() qos 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("biofusion/#", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("biofusion/#", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() disconnected error = %v, want ErrNotConnected", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Unsubscribe("biofusion/#"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v, want nil", err)
	}
}

func TestHasSubscription(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	client.subscriptions["biofusion/verification/+/+"] = subscription{topic: "biofusion/verification/+/+"}

	if !client.HasSubscription("biofusion/verification/+/+") {
		t.Error("HasSubscription() = false for tracked topic")
	}
	if client.HasSubscription("biofusion/threat/feed/+") {
		t.Error("HasSubscription() = true for untracked topic")
	}
}
