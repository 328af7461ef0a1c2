package geometry

import (
	"math"
	"slices"
	"sort"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
)

// MaxScalePoints is the capacity of a [Scale], the two border points included.
const MaxScalePoints = 64

// Scale maps sparse integer order values to coordinates and back.
//
// A new scale holds two border points: [math.MinInt32] at the lower bound and
// [math.MaxInt32] at the upper bound. Every order added with [Scale.AddOrder]
// becomes a point; after each insertion all points are spread evenly across
// [lower, upper] in ascending order. Points keep their relative order but not
// their absolute position.
//
// Between points, both directions interpolate linearly.
type Scale struct {
	lower, upper float64
	orders       []int32
	locations    []float64
}

// NewScale creates a scale spanning [lower, upper] with only its border points.
// Reversed bounds are swapped.
func NewScale(lower, upper float64) *Scale {
	if upper < lower {
		lower, upper = upper, lower
	}
	s := &Scale{
		lower:     lower,
		upper:     upper,
		orders:    make([]int32, 0, MaxScalePoints),
		locations: make([]float64, 0, MaxScalePoints),
	}
	s.orders = append(s.orders, math.MinInt32, math.MaxInt32)
	s.locations = append(s.locations, lower, upper)
	return s
}

// Len returns the number of points, borders included.
func (s *Scale) Len() int { return len(s.orders) }

// Bounds returns the lower and upper coordinate of the scale.
func (s *Scale) Bounds() (lower, upper float64) { return s.lower, s.upper }

// AddOrder inserts order as a new point. Adding an existing order or a border
// value is a no-op. When the scale is full the order is dropped and a
// capacity-exceeded error is returned; the scale stays valid.
func (s *Scale) AddOrder(order int32) error {
	idx, found := slices.BinarySearch(s.orders, order)
	if found {
		return nil
	}
	if len(s.orders) >= MaxScalePoints {
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"scale full: %d points, order %d dropped", MaxScalePoints, order)
	}
	s.orders = slices.Insert(s.orders, idx, order)
	s.locations = append(s.locations, 0)
	s.respread()
	return nil
}

func (s *Scale) respread() {
	last := len(s.locations) - 1
	for i := range s.locations {
		switch i {
		case 0:
			s.locations[i] = s.lower
		case last:
			s.locations[i] = s.upper
		default:
			s.locations[i] = s.lower + (s.upper-s.lower)*float64(i)/float64(last)
		}
	}
}

// Location returns the coordinate of order, interpolating between the
// neighbouring points when order is not a point itself.
func (s *Scale) Location(order int32) float64 {
	idx, found := slices.BinarySearch(s.orders, order)
	if found {
		return s.locations[idx]
	}
	lo, hi := idx-1, idx
	span := float64(s.orders[hi]) - float64(s.orders[lo])
	frac := (float64(order) - float64(s.orders[lo])) / span
	return s.locations[lo] + frac*(s.locations[hi]-s.locations[lo])
}

// Order returns the order value at location.
//
// If an inner point lies within snap of location, the nearest such point's
// order is returned. Border points never snap. Otherwise an order is
// synthesized by linear interpolation between the neighbouring points.
// Locations outside the scale map to the border orders.
func (s *Scale) Order(location, snap float64) int32 {
	best, bestDist := -1, math.Inf(1)
	for i := 1; i < len(s.locations)-1; i++ {
		d := math.Abs(location - s.locations[i])
		if d <= snap && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return s.orders[best]
	}

	last := len(s.locations) - 1
	if location <= s.locations[0] {
		return s.orders[0]
	}
	if location >= s.locations[last] {
		return s.orders[last]
	}

	hi := sort.Search(len(s.locations), func(i int) bool { return s.locations[i] >= location })
	if s.locations[hi] == location {
		return s.orders[hi]
	}
	lo := hi - 1
	frac := (location - s.locations[lo]) / (s.locations[hi] - s.locations[lo])
	o := float64(s.orders[lo]) + frac*(float64(s.orders[hi])-float64(s.orders[lo]))
	return int32(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Round(o))))
}
