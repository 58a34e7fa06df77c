package software

import (
	"math"
	"slices"

	"github.com/gogpu/g3d/driver"
)

// query counts the vertices submitted between QueryBegin and QueryEnd. The
// software renderer does not rasterize, so every submitted vertex counts as
// one passing sample.
type query struct {
	active  bool
	done    bool
	samples int64
}

func (r *Renderer) CreateQuery() driver.Query {
	q := &query{}
	r.queries = append(r.queries, q)
	return q
}

func (r *Renderer) DisposeQuery(qo driver.Query) {
	if q, ok := qo.(*query); ok {
		r.queries = slices.DeleteFunc(r.queries, func(x *query) bool { return x == q })
	}
}

func (r *Renderer) QueryBegin(qo driver.Query) {
	if q, ok := qo.(*query); ok {
		q.active, q.done, q.samples = true, false, 0
	}
}

func (r *Renderer) QueryEnd(qo driver.Query) {
	if q, ok := qo.(*query); ok && q.active {
		q.active, q.done = false, true
	}
}

// QueryComplete is true once QueryEnd has run; results are immediate.
func (r *Renderer) QueryComplete(qo driver.Query) bool {
	q, ok := qo.(*query)
	return ok && q.done
}

func (r *Renderer) QueryPixelCount(qo driver.Query) int32 {
	q, ok := qo.(*query)
	if !ok {
		return 0
	}
	return int32(min(q.samples, math.MaxInt32))
}
