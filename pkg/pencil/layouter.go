package pencil

import (
	"math"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/sorter"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// variant selects the visibility rules of a 2D pass.
type variant int

const (
	variantStandard variant = iota
	variantVoid
	variantCommunication
)

// Layouter routes the relationships of a layout model.
//
// A Layouter keeps transient state during a pass and must not be shared
// between goroutines. It can be reused for any number of sequential passes.
type Layouter struct {
	sizes  Sizes
	logger *log.Logger
	sorter *sorter.Sorter

	// pass state, valid between begin and end
	m       *layout.Model
	area    geometry.Rect
	units   float64 // draw area size, at least 1
	placed  []int   // drawn relationship layouts in routing order
	current int     // relationship layout being routed, -1 outside route
	buf     [MaxCandidates]Candidate
}

// New creates a layouter. Invalid sizes fall back to [DefaultSizes]; a nil
// logger falls back to the default logger.
func New(sizes Sizes, logger *log.Logger) *Layouter {
	if sizes.Validate() != nil {
		sizes = DefaultSizes()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Layouter{
		sizes:   sizes,
		logger:  logger,
		sorter:  sorter.New(sorter.DefaultCapacity),
		current: -1,
	}
}

// Sizes returns the sizes the layouter routes with.
func (l *Layouter) Sizes() Sizes { return l.sizes }

// Layout routes m with the variant matching its diagram type.
//
// The returned error is either nil or a capacity-exceeded warning; every
// relationship of m is shaped in both cases.
func (l *Layouter) Layout(m *layout.Model) error {
	switch t := m.DiagramType(); {
	case t == visible.DiagramList || t == visible.DiagramBox:
		return l.LayoutVoid(m)
	case t == visible.DiagramCommunication:
		return l.LayoutCommunication(m)
	case t.IsScenario():
		return l.Layout1D(m)
	default:
		return l.LayoutStandard(m)
	}
}

// LayoutStandard routes every relationship and draws all of them.
func (l *Layouter) LayoutStandard(m *layout.Model) error { return l.run(m, variantStandard) }

// LayoutVoid routes every relationship but draws none of them. The shapes
// stay available for queries.
func (l *Layouter) LayoutVoid(m *layout.Model) error { return l.run(m, variantVoid) }

// LayoutCommunication draws only relationships with at least one end
// anchored at a feature; the others are routed as implicit.
func (l *Layouter) LayoutCommunication(m *layout.Model) error {
	return l.run(m, variantCommunication)
}

func (l *Layouter) begin(m *layout.Model) {
	l.m = m
	l.area = m.DrawArea()
	l.units = math.Max(l.area.Width*l.area.Height, 1)
	l.placed = l.placed[:0]
	l.current = -1
	l.sorter.Reset()
}

func (l *Layouter) end() {
	l.sorter.Reset()
	l.m = nil
	l.placed = l.placed[:0]
	l.current = -1
}

func (l *Layouter) run(m *layout.Model, v variant) error {
	l.begin(m)
	defer l.end()

	for i := range m.Relationships {
		m.Relationships[i].Visibility = l.visibility(m.Relationships[i], v)
	}

	order, err := l.processingOrder()

	for _, i := range order {
		l.route(i)
	}

	l.logger.Debug("routed relationships",
		"relationships", len(m.Relationships),
		"drawn", len(l.placed),
		"variant", v)
	return err
}

// visibility resolves step 1 for one relationship layout.
func (l *Layouter) visibility(r layout.Relationship, v variant) layout.Visibility {
	switch {
	case v == variantVoid:
		return layout.Implicit
	case v == variantCommunication && !r.From.IsFeature() && !r.To.IsFeature():
		return layout.Implicit
	case l.m.GrayedOut(r.From) || l.m.GrayedOut(r.To):
		return layout.GrayOut
	default:
		return layout.Show
	}
}

// simpleness returns the processing weight of a relationship layout; lower
// weights are routed first.
func (l *Layouter) simpleness(i int) int64 {
	r := l.m.Relationships[i]
	rel := l.m.Relationship(i)
	width := int64(l.area.Width)

	var w int64
	fromPlacement := l.m.Classifiers[r.From.Classifier].Index
	toPlacement := l.m.Classifiers[r.To.Classifier].Index
	if rel.IsDeprioritized() || l.m.Set().Related(fromPlacement, toPlacement) {
		w += width
	}
	if !r.Visibility.IsDrawn() {
		w += 2 * width
	}
	from, to := l.m.EndpointBox(r.From), l.m.EndpointBox(r.To)
	w -= int64(math.Abs(from.CenterX() - to.CenterX()))
	w -= int64(math.Abs(from.CenterY() - to.CenterY()))
	return w
}

// processingOrder sorts the relationship layouts by simpleness. Layouts that
// do not fit into the sorter follow in index order.
func (l *Layouter) processingOrder() ([]int, error) {
	n := len(l.m.Relationships)
	var overflow []int
	for i := 0; i < n; i++ {
		if err := l.sorter.Insert(i, l.simpleness(i)); err != nil {
			overflow = append(overflow, i)
		}
	}

	order := make([]int, 0, n)
	for k := 0; k < l.sorter.Len(); k++ {
		order = append(order, l.sorter.ArrayIndex(k))
	}
	if len(overflow) == 0 {
		return order, nil
	}

	l.logger.Warn("processing order incomplete, routing rest in index order",
		"capacity", l.sorter.Cap(),
		"unsorted", len(overflow))
	return append(order, overflow...), apperrors.New(apperrors.ErrCodeCapacityExceeded,
		"sorter capacity %d exceeded, %d relationships routed unsorted", l.sorter.Cap(), len(overflow))
}

// route shapes one relationship layout with its cheapest candidate.
func (l *Layouter) route(i int) {
	l.current = i
	defer func() { l.current = -1 }()

	r := &l.m.Relationships[i]
	from, to := l.m.EndpointBox(r.From), l.m.EndpointBox(r.To)
	cands := l.candidates(from, to)

	best, bestDebts := 0, math.Inf(1)
	for k, c := range cands {
		d := l.debts(k, c.Shape, r.From, r.To)
		if d < bestDebts {
			best, bestDebts = k, d
		}
	}

	r.Shape = cands[best].Shape
	r.Shaped = true
	if r.Visibility.IsDrawn() {
		l.placed = append(l.placed, i)
	}
	l.logger.Debug("routed relationship",
		"relationship", l.m.Relationship(i).ID,
		"family", cands[best].Family,
		"candidates", len(cands),
		"debts", bestDebts)
}

func (v variant) String() string {
	switch v {
	case variantVoid:
		return "void"
	case variantCommunication:
		return "communication"
	default:
		return "standard"
	}
}
