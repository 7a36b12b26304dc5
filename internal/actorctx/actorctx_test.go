package actorctx

import (
	"context"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	if _, ok := UserIDFrom(context.Background()); ok {
		t.Fatalf("empty context should not carry a user")
	}

	ctx := WithUserID(context.Background(), 9)
	id, ok := UserIDFrom(ctx)
	if !ok || id != 9 {
		t.Fatalf("got %d,%v want 9,true", id, ok)
	}

	if _, ok := UserIDFrom(WithUserID(context.Background(), 0)); ok {
		t.Fatalf("zero id should be treated as absent")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(WithUserID(context.Background(), 3), "req-1")

	id, ok := RequestIDFrom(ctx)
	if !ok || id != "req-1" {
		t.Fatalf("got %q,%v want req-1,true", id, ok)
	}
	if uid, _ := UserIDFrom(ctx); uid != 3 {
		t.Fatalf("user id lost, got %d", uid)
	}
	if _, ok := RequestIDFrom(context.Background()); ok {
		t.Fatalf("empty context should not carry a request id")
	}
}
