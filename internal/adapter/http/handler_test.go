package httpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"timeslider/internal/adapter/metrics/inmemory"
	"timeslider/internal/adapter/repo/memory"
	"timeslider/internal/app/animation/animationtest"
	"timeslider/internal/app/slider"
	"timeslider/internal/domain/temporal"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const testLayer = "esri/0"

func newTestHandler(t *testing.T) (Handler, *animationtest.Timers) {
	t.Helper()
	timers := animationtest.New()
	metrics := inmemory.NewRecorder()
	ctl := slider.NewController(slider.Config{Metrics: metrics, AfterFunc: timers.AfterFunc})
	t.Cleanup(ctl.Close)
	err := ctl.Register(context.Background(), slider.LayerSpec{
		LayerPath:  testLayer,
		Domain:     temporal.Domain{Min: 0, Max: 1000},
		FieldAlias: "Date",
		Delay:      time.Second,
		Filtering:  true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return Handler{Slider: ctl, KPI: metrics}, timers
}

func postJSON(body string) *app.RequestContext {
	ctx := &app.RequestContext{}
	ctx.Request.Header.SetMethod(consts.MethodPost)
	ctx.Request.SetBody([]byte(body))
	return ctx
}

func decodeView(t *testing.T, ctx *app.RequestContext) slider.View {
	t.Helper()
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, ctx.Response.Body())
	}
	var v slider.View
	if err := json.Unmarshal(ctx.Response.Body(), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestValues_ReturnsUpdatedView(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := postJSON(`{"layer_path":"esri/0","values":[300,100]}`)
	h.values(context.Background(), ctx)

	v := decodeView(t, ctx)
	if len(v.Values) != 2 || v.Values[0] != 100 || v.Values[1] != 300 {
		t.Fatalf("expected [100 300], got %v", v.Values)
	}
	if v.LayerPath != testLayer {
		t.Fatalf("unexpected layer path %q", v.LayerPath)
	}
}

func TestPlayAndPause(t *testing.T) {
	h, timers := newTestHandler(t)

	ctx := postJSON(`{"layer_path":"esri/0"}`)
	h.command(h.Slider.Play)(context.Background(), ctx)
	v := decodeView(t, ctx)
	if !v.Playing || v.TimerState != "scheduled" {
		t.Fatalf("expected playing with scheduled timer, got playing=%v timer=%s", v.Playing, v.TimerState)
	}
	if timers.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", timers.Pending())
	}

	ctx = postJSON(`{"layer_path":"esri/0"}`)
	h.command(h.Slider.Pause)(context.Background(), ctx)
	v = decodeView(t, ctx)
	if v.Playing {
		t.Fatalf("expected paused")
	}
	if timers.Pending() != 0 {
		t.Fatalf("expected no pending timer, got %d", timers.Pending())
	}
}

func TestLayer_ReadsQueryParameter(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/slider/layer?layer_path=esri%2F0")
	h.layer(context.Background(), ctx)

	v := decodeView(t, ctx)
	if v.Heading == "" || len(v.Ticks) != 5 {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestLayers_ListsViews(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := &app.RequestContext{}
	h.layers(context.Background(), ctx)

	var body layersResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Layers) != 1 || body.Layers[0].LayerPath != testLayer {
		t.Fatalf("unexpected layers: %+v", body.Layers)
	}
}

func TestHandlers_MapErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	cases := []struct {
		name   string
		call   func(context.Context, *app.RequestContext)
		body   string
		status int
		code   string
	}{
		{name: "unknown layer", call: h.command(h.Slider.Play), body: `{"layer_path":"nope"}`, status: consts.StatusNotFound, code: "not_found"},
		{name: "missing path", call: h.command(h.Slider.Play), body: `{}`, status: consts.StatusBadRequest, code: "bad_request"},
		{name: "bad json", call: h.values, body: `{"layer_path":`, status: consts.StatusBadRequest, code: "invalid_json"},
		{name: "wrong handle count", call: h.values, body: `{"layer_path":"esri/0","values":[1]}`, status: consts.StatusBadRequest, code: "invalid_mode_combination"},
		{name: "bad delay", call: h.delay, body: `{"layer_path":"esri/0","delay_ms":0}`, status: consts.StatusBadRequest, code: "invalid_delay"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := postJSON(tc.body)
			tc.call(context.Background(), ctx)
			if got := ctx.Response.StatusCode(); got != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, got)
			}
			if got := errorCode(t, ctx); got != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, got)
			}
		})
	}
}

func TestFiltering_DisabledRejectsSteps(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := postJSON(`{"layer_path":"esri/0","filtering":false}`)
	h.filtering(context.Background(), ctx)
	if v := decodeView(t, ctx); v.Filtering || v.Summary != "" {
		t.Fatalf("expected filtering off with empty summary, got %+v", v)
	}

	ctx = postJSON(`{"layer_path":"esri/0"}`)
	h.command(h.Slider.StepForward)(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusConflict {
		t.Fatalf("expected 409, got %d", got)
	}
	if got := errorCode(t, ctx); got != "filtering_disabled" {
		t.Fatalf("unexpected code %q", got)
	}
}

func TestLockedReversedDelay(t *testing.T) {
	h, _ := newTestHandler(t)
	bg := context.Background()

	ctx := postJSON(`{"layer_path":"esri/0","locked":true}`)
	h.locked(bg, ctx)
	decodeView(t, ctx)

	ctx = postJSON(`{"layer_path":"esri/0","reversed":true}`)
	h.reversed(bg, ctx)
	decodeView(t, ctx)

	ctx = postJSON(`{"layer_path":"esri/0","delay_ms":1500}`)
	h.delay(bg, ctx)
	v := decodeView(t, ctx)
	if !v.Locked || !v.Reversed || v.DelayMS != 1500 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if v.LockTooltip != "timeSlider.slider.unlockRight" {
		t.Fatalf("unexpected tooltip %q", v.LockTooltip)
	}
}

func TestKPI(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := postJSON(`{"layer_path":"esri/0"}`)
	h.command(h.Slider.StepForward)(context.Background(), ctx)
	decodeView(t, ctx)

	ctx = &app.RequestContext{}
	h.kpi(context.Background(), ctx)
	var snap inmemory.Snapshot
	if err := json.Unmarshal(ctx.Response.Body(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.StepTotal != 1 || snap.StepsByStrategy["interval_free"] != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	ctx = &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 without provider, got %d", got)
	}
}

func TestRegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	s := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.RegisterRoutes(s)

	want := map[string]bool{
		"GET /api/slider/layers":        false,
		"GET /api/slider/layer":         false,
		"POST /api/slider/values":       false,
		"POST /api/slider/toggle_play":  false,
		"POST /api/slider/step_back":    false,
		"POST /api/slider/step_forward": false,
		"GET /ops/kpi":                  false,
		"GET /ops/windows":              false,
	}
	for _, r := range s.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Fatalf("route %s not registered", key)
		}
	}
}

func TestWindows_ListsMirroredState(t *testing.T) {
	timers := animationtest.New()
	repo := memory.NewWindowRepo(memory.NewStore())
	ctl := slider.NewController(slider.Config{Store: repo, AfterFunc: timers.AfterFunc})
	t.Cleanup(ctl.Close)
	bg := context.Background()
	for _, path := range []string{"layer/b", "layer/a"} {
		err := ctl.Register(bg, slider.LayerSpec{LayerPath: path, Domain: temporal.Domain{Min: 0, Max: 100}, Filtering: true})
		if err != nil {
			t.Fatalf("register %s: %v", path, err)
		}
	}
	h := Handler{Slider: ctl, Mirror: repo}

	ctx := postJSON(`{"layer_path":"layer/b"}`)
	h.command(h.Slider.Play)(bg, ctx)
	decodeView(t, ctx)

	ctx = &app.RequestContext{}
	h.windows(bg, ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	var body struct {
		Windows []struct {
			LayerPath string  `json:"layer_path"`
			Values    []int64 `json:"values"`
			Playing   bool    `json:"playing"`
		} `json:"windows"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Windows) != 2 || body.Windows[0].LayerPath != "layer/a" || body.Windows[1].LayerPath != "layer/b" {
		t.Fatalf("unexpected windows: %+v", body.Windows)
	}
	if b := body.Windows[1]; !b.Playing || len(b.Values) != 2 || b.Values[0] != 0 || b.Values[1] != 10 {
		t.Fatalf("mirror out of date for layer/b: %+v", b)
	}

	ctx = &app.RequestContext{}
	Handler{}.windows(bg, ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 without mirror, got %d", got)
	}
}
