package portal

import "sync"

// ChartSlot names one of the dashboard charts.
type ChartSlot string

const (
	AllocationChart ChartSlot = "allocation" // current allocation donut
	ComparisonChart ChartSlot = "comparison" // current vs target bars
	TrendChart      ChartSlot = "trend"      // current vs target lines
)

// ChartSlots lists the slots in drawing order.
var ChartSlots = []ChartSlot{AllocationChart, ComparisonChart, TrendChart}

// Series is one data series of a chart.
type Series struct {
	Label  string
	Values []float64
}

// ChartSpec is the library-independent description of a chart.
type ChartSpec struct {
	Slot   ChartSlot
	Type   string // doughnut, bar or line
	Title  string
	Labels []string
	Series []Series
}

// ChartHandle is a drawn chart. Destroy releases it.
type ChartHandle interface {
	Destroy()
}

// ChartDrawer turns a spec into a live chart.
type ChartDrawer interface {
	Draw(ChartSpec) ChartHandle
}

// ChartDrawerFunc adapts a function to ChartDrawer.
type ChartDrawerFunc func(ChartSpec) ChartHandle

func (f ChartDrawerFunc) Draw(s ChartSpec) ChartHandle { return f(s) }

// specHandle keeps the spec for surfaces that render charts as data.
type specHandle struct{ spec ChartSpec }

func (*specHandle) Destroy() {}

// ChartRegistry holds at most one live chart per slot.
type ChartRegistry struct {
	mu      sync.Mutex
	drawer  ChartDrawer
	handles map[ChartSlot]ChartHandle
	specs   map[ChartSlot]ChartSpec
}

// NewChartRegistry returns a registry drawing with d. A nil d keeps the
// specs only.
func NewChartRegistry(d ChartDrawer) *ChartRegistry {
	if d == nil {
		d = ChartDrawerFunc(func(s ChartSpec) ChartHandle { return &specHandle{s} })
	}
	return &ChartRegistry{
		drawer:  d,
		handles: map[ChartSlot]ChartHandle{},
		specs:   map[ChartSlot]ChartSpec{},
	}
}

// Draw destroys the chart in the spec's slot, then draws the spec.
func (r *ChartRegistry) Draw(spec ChartSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[spec.Slot]; ok {
		h.Destroy()
	}
	r.handles[spec.Slot] = r.drawer.Draw(spec)
	r.specs[spec.Slot] = spec
}

// DestroyAll destroys every live chart and returns how many there were.
func (r *ChartRegistry) DestroyAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.handles)
	for slot, h := range r.handles {
		h.Destroy()
		delete(r.handles, slot)
		delete(r.specs, slot)
	}
	return n
}

// Live returns the number of live charts.
func (r *ChartRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Specs returns the specs of the live charts, in slot order.
func (r *ChartRegistry) Specs() []ChartSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []ChartSpec
	for _, slot := range ChartSlots {
		if s, ok := r.specs[slot]; ok {
			res = append(res, s)
		}
	}
	return res
}

// DashboardCharts builds the three dashboard charts from a breakdown.
func DashboardCharts(b AllocationBreakdown) []ChartSpec {
	labels := make([]string, len(b))
	current := make([]float64, len(b))
	target := make([]float64, len(b))
	for i, a := range b {
		labels[i] = TitleCase(a.Asset)
		current[i] = float64(a.CurrentPercent)
		target[i] = float64(a.TargetPercent)
	}
	return []ChartSpec{
		{
			Slot: AllocationChart, Type: "doughnut", Title: "Current Allocation",
			Labels: labels, Series: []Series{{"Current %", current}},
		},
		{
			Slot: ComparisonChart, Type: "bar", Title: "Current vs Target",
			Labels: labels, Series: []Series{{"Current %", current}, {"Target %", target}},
		},
		{
			Slot: TrendChart, Type: "line", Title: "Allocation Trend",
			Labels: labels, Series: []Series{{"Current %", current}, {"Target %", target}},
		},
	}
}
