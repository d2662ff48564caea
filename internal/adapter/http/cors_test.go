package httpadapter

import (
	"bytes"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestApplyCORSHeaders(t *testing.T) {
	cases := []struct {
		origin   string
		want     string
		wantVary string
	}{
		{origin: "", want: "*"},
		{origin: "*", want: "*"},
		{origin: " https://map.example.org ", want: "https://map.example.org", wantVary: "Origin"},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		applyCORSHeaders(ctx, tc.origin)

		if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")); got != tc.want {
			t.Fatalf("allow-origin for %q: got=%q want=%q", tc.origin, got, tc.want)
		}
		if got := string(ctx.Response.Header.Peek("Vary")); got != tc.wantVary {
			t.Fatalf("vary for %q: got=%q want=%q", tc.origin, got, tc.wantVary)
		}
		if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")); got != corsAllowHeaders {
			t.Fatalf("allow-headers mismatch: got=%q want=%q", got, corsAllowHeaders)
		}
	}
}

func TestCORSPreflight_SliderCommandIsNotExecuted(t *testing.T) {
	h, timers := newTestHandler(t)
	h.AllowOrigin = "https://map.example.org"
	s := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.RegisterRoutes(s)

	for _, path := range []string{"/api/slider/values", "/api/slider/play"} {
		w := ut.PerformRequest(s.Engine, consts.MethodOptions, path, nil,
			ut.Header{Key: "Origin", Value: "https://map.example.org"},
			ut.Header{Key: "Access-Control-Request-Method", Value: "POST"},
		)
		resp := w.Result()
		if got := resp.StatusCode(); got != consts.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", path, got)
		}
		if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != "https://map.example.org" {
			t.Fatalf("%s: allow-origin mismatch: %q", path, got)
		}
		if got := string(resp.Header.Peek("Access-Control-Allow-Methods")); got != corsAllowMethods {
			t.Fatalf("%s: allow-methods mismatch: %q", path, got)
		}
	}
	if timers.Pending() != 0 {
		t.Fatalf("preflight must not start playback")
	}

	body := `{"layer_path":"esri/0","values":[100,300]}`
	w := ut.PerformRequest(s.Engine, consts.MethodPost, "/api/slider/values",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
	resp := w.Result()
	if got := resp.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, resp.Body())
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != "https://map.example.org" {
		t.Fatalf("allow-origin missing on POST: %q", got)
	}
}
