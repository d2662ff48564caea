package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"timeslider/internal/app/ports"
	"timeslider/internal/app/slider"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	Slider *slider.Controller
	KPI    kpiSnapshotProvider
	Mirror ports.WindowLister
	// AllowOrigin is sent as Access-Control-Allow-Origin; "*" when empty.
	AllowOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.AllowOrigin))

	api := s.Group("/api/slider")
	api.GET("/layers", h.layers)
	api.GET("/layer", h.layer)
	api.POST("/values", h.values)
	api.POST("/locked", h.locked)
	api.POST("/reversed", h.reversed)
	api.POST("/delay", h.delay)
	api.POST("/filtering", h.filtering)
	api.POST("/play", h.command(h.Slider.Play))
	api.POST("/pause", h.command(h.Slider.Pause))
	api.POST("/toggle_play", h.command(h.Slider.TogglePlay))
	api.POST("/step_back", h.command(h.Slider.StepBack))
	api.POST("/step_forward", h.command(h.Slider.StepForward))

	s.GET("/ops/kpi", h.kpi)
	s.GET("/ops/windows", h.windows)
}

type layerRequest struct {
	LayerPath string `json:"layer_path"`
}

type valuesRequest struct {
	LayerPath string  `json:"layer_path"`
	Values    []int64 `json:"values"`
}

type lockedRequest struct {
	LayerPath string `json:"layer_path"`
	Locked    bool   `json:"locked"`
}

type reversedRequest struct {
	LayerPath string `json:"layer_path"`
	Reversed  bool   `json:"reversed"`
}

type delayRequest struct {
	LayerPath string `json:"layer_path"`
	DelayMS   int64  `json:"delay_ms"`
}

type filteringRequest struct {
	LayerPath string `json:"layer_path"`
	Filtering bool   `json:"filtering"`
}

type layersResponse struct {
	Layers []slider.View `json:"layers"`
}

func (h Handler) layers(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, layersResponse{Layers: h.Slider.Views()})
}

func (h Handler) layer(_ context.Context, ctx *app.RequestContext) {
	path, err := requireLayerPath(ctx.Query("layer_path"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.respondView(ctx, path)
}

func (h Handler) values(c context.Context, ctx *app.RequestContext) {
	var body valuesRequest
	if !decodeBody(ctx, &body) {
		return
	}
	h.apply(ctx, body.LayerPath, func(path string) error {
		return h.Slider.SetValues(c, path, body.Values)
	})
}

func (h Handler) locked(c context.Context, ctx *app.RequestContext) {
	var body lockedRequest
	if !decodeBody(ctx, &body) {
		return
	}
	h.apply(ctx, body.LayerPath, func(path string) error {
		return h.Slider.SetLocked(c, path, body.Locked)
	})
}

func (h Handler) reversed(c context.Context, ctx *app.RequestContext) {
	var body reversedRequest
	if !decodeBody(ctx, &body) {
		return
	}
	h.apply(ctx, body.LayerPath, func(path string) error {
		return h.Slider.SetReversed(c, path, body.Reversed)
	})
}

func (h Handler) delay(c context.Context, ctx *app.RequestContext) {
	var body delayRequest
	if !decodeBody(ctx, &body) {
		return
	}
	h.apply(ctx, body.LayerPath, func(path string) error {
		return h.Slider.SetDelay(c, path, time.Duration(body.DelayMS)*time.Millisecond)
	})
}

func (h Handler) filtering(c context.Context, ctx *app.RequestContext) {
	var body filteringRequest
	if !decodeBody(ctx, &body) {
		return
	}
	h.apply(ctx, body.LayerPath, func(path string) error {
		return h.Slider.SetFiltering(c, path, body.Filtering)
	})
}

// command adapts the controller operations that only take a layer path.
func (h Handler) command(op func(context.Context, string) error) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		var body layerRequest
		if !decodeBody(ctx, &body) {
			return
		}
		h.apply(ctx, body.LayerPath, func(path string) error {
			return op(c, path)
		})
	}
}

func (h Handler) apply(ctx *app.RequestContext, rawPath string, op func(path string) error) {
	path, err := requireLayerPath(rawPath)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := op(path); err != nil {
		writeError(ctx, err)
		return
	}
	h.respondView(ctx, path)
}

func (h Handler) respondView(ctx *app.RequestContext, path string) {
	view, err := h.Slider.View(path)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

type windowsResponse struct {
	Windows []ports.WindowSnapshot `json:"windows"`
}

// windows lists what the store mirror currently holds, for checking it against the live views.
func (h Handler) windows(c context.Context, ctx *app.RequestContext) {
	if h.Mirror == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "window mirror not configured")
		return
	}
	list, err := h.Mirror.List(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, windowsResponse{Windows: list})
}

func requireLayerPath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", fmt.Errorf("%w: layer_path is required", slider.ErrInvalidRequest)
	}
	return path, nil
}

func decodeBody(ctx *app.RequestContext, out any) bool {
	if err := decodeJSON(ctx, out); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return false
	}
	return true
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, slider.ErrUnknownLayer),
		errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, slider.ErrInvalidModeCombination):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_mode_combination", err.Error())
	case errors.Is(err, slider.ErrInvalidDelay):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_delay", err.Error())
	case errors.Is(err, slider.ErrFilteringDisabled):
		writeErrorBody(ctx, consts.StatusConflict, "filtering_disabled", err.Error())
	case errors.Is(err, slider.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
