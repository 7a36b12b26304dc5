package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/geocoder89/bookrental/internal/actorctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDB_ClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.create", func() error {
		return &pgconn.PgError{Code: "23505"}
	})
	_ = p.ObserveDB("users.create", func() error {
		return errors.New("dial tcp: connection refused")
	})
	_ = p.ObserveDB("users.create", func() error { return nil })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("unique_violation count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "connection")); got != 1 {
		t.Fatalf("connection count = %v, want 1", got)
	}
}

func TestNilPromIsSafe(t *testing.T) {
	var p *Prom
	p.GuardRejected("is_logged_in", "token_missing")
	p.TokenIssued("login")
}

func TestGuardRejectedCounts(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	p.GuardRejected("is_admin", "permission_denied")
	p.GuardRejected("is_admin", "permission_denied")

	if got := testutil.ToFloat64(p.GuardRejections.WithLabelValues("is_admin", "permission_denied")); got != 2 {
		t.Fatalf("got %v want 2", got)
	}
}

func TestLogger_JSONWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "")

	log.DebugContext(context.Background(), "hidden")
	log.InfoContext(context.Background(), "visible", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "visible" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("trace_id must only be present inside a span")
	}
}

func TestLogger_StampsActor(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "test", "info")

	ctx := actorctx.WithRequestID(actorctx.WithUserID(context.Background(), 42), "req-7")
	log.InfoContext(ctx, "rented")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("bad record %q: %v", buf.String(), err)
	}
	if rec["user_id"] != float64(42) {
		t.Fatalf("expected user_id=42, got %v", rec["user_id"])
	}
	if rec["request_id"] != "req-7" || rec["env"] != "test" {
		t.Fatalf("expected request_id and env on the record, got %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		env, level string
		want       slog.Level
	}{
		{"dev", "", slog.LevelDebug},
		{"prod", "", slog.LevelInfo},
		{"prod", "WARN", slog.LevelWarn},
		{"dev", "error", slog.LevelError},
		{"prod", "loud", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.env, c.level); got != c.want {
			t.Fatalf("parseLevel(%q,%q) = %v want %v", c.env, c.level, got, c.want)
		}
	}
}

func TestClassifyDBErr(t *testing.T) {
	cases := map[string]error{
		"check_violation":    &pgconn.PgError{Code: "23514"},
		"pg_22001":           &pgconn.PgError{Code: "22001"},
		"timeout":            context.DeadlineExceeded,
		"canceled":           context.Canceled,
		"unknown":            errors.New("boom"),
		"connection":         errors.New("failed to connect to host"),
		"lock_not_available": &pgconn.PgError{Code: "55P03"},
	}
	for want, err := range cases {
		if got := classifyDBErr(err); got != want {
			t.Fatalf("classifyDBErr(%v) = %q want %q", err, got, want)
		}
	}
}

func TestCollectorHost(t *testing.T) {
	for in, want := range map[string]string{
		"":                           "localhost:4317",
		"otel-collector:4317":        "otel-collector:4317",
		"http://otel-collector:4317": "otel-collector:4317",
	} {
		if got := collectorHost(in); got != want {
			t.Fatalf("collectorHost(%q) = %q want %q", in, got, want)
		}
	}
}
