package stripeapi

import (
	"context"
	"errors"
	"testing"
)

func TestCheckConnection_ContextCanceled(t *testing.T) {
	client := New("sk_test_123", "http://127.0.0.1:8080")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CheckConnection(ctx)
	if err == nil {
		t.Fatal("Expected an error with a canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in the chain, got %v", err)
	}

	if category, _ := Classify(err); category != CategoryNetwork {
		t.Errorf("Expected category %s, got %s", CategoryNetwork, category)
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	client := New("sk_test_123", "https://pay.example.com/")
	if client.BaseURL != "https://pay.example.com" {
		t.Errorf("Expected trailing slash trimmed, got '%s'", client.BaseURL)
	}
}
