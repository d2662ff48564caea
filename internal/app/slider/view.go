package slider

import (
	"sort"

	"timeslider/internal/domain/temporal"
)

func (c *Controller) View(layerPath string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.layer(layerPath)
	if err != nil {
		return View{}, err
	}
	return c.view(layerPath, st), nil
}

// Views returns every mounted layer ordered by path.
func (c *Controller) Views() []View {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]View, 0, len(c.layers))
	for path, st := range c.layers {
		out = append(out, c.view(path, st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LayerPath < out[j].LayerPath })
	return out
}

func (c *Controller) view(layerPath string, st *layerState) View {
	d := st.spec.Domain
	g := temporal.Classify(d)
	w := st.window.Clone()
	reference := d.Min
	if len(st.spec.DefaultValues) > 0 {
		reference = st.spec.DefaultValues[0]
	}
	choices := make([]int64, 0, len(temporal.DelayChoices))
	for _, dc := range temporal.DelayChoices {
		choices = append(choices, dc.Milliseconds())
	}
	return View{
		LayerPath:      layerPath,
		Title:          st.spec.Title,
		Description:    st.spec.Description,
		Field:          st.spec.Field,
		FieldAlias:     st.spec.FieldAlias,
		Heading:        temporal.Heading(st.spec.FieldAlias, g, reference),
		Domain:         d,
		Granularity:    g,
		Ticks:          temporal.TickMarks(d, g),
		Values:         w.Values,
		ValueLabels:    temporal.ValueLabels(w.Values, g),
		Locked:         w.Locked,
		Reversed:       w.Reversed,
		Filtering:      w.Filtering,
		Playing:        w.Playing,
		DelayMS:        w.Delay.Milliseconds(),
		DelayChoicesMS: choices,
		Summary:        temporal.Summary(w),
		LockTooltip:    temporal.LockTooltipKey(w),
		TimerState:     c.sched.State(layerPath).String(),
	}
}
