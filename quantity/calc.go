package quantity

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/formula"
)

// Calculator evaluates the formulas of phase items. The zero value parses
// every formula anew and does not log.
type Calculator struct {
	// Cache holds compiled formulas. It may be shared between calculators.
	Cache *formula.Cache
	// Logger receives a debug entry per interval and a warning per failure.
	Logger *zap.Logger
	// Workers limits the number of items Sheet computes at once. If it is
	// zero or negative, there is no limit.
	Workers int
}

// ItemResult is the outcome of computing one item.
type ItemResult struct {
	ID   string
	Unit string
	// Total is the sum of the quantities of the intervals that succeeded.
	Total float64
	// Err is the error compiling the formula. If it is set, no interval was
	// evaluated and Intervals is empty.
	Err error
	// Intervals holds one result per interval of the item, in order.
	Intervals []IntervalResult
}

// Failed returns the number of intervals that did not produce a quantity.
func (r *ItemResult) Failed() int {
	n := 0
	for _, iv := range r.Intervals {
		if iv.Err != nil {
			n++
		}
	}
	return n
}

// IntervalResult is the outcome of evaluating an item's formula for one
// interval.
type IntervalResult struct {
	Quantity float64
	Err      error
	// Dropped lists the sorted input names that were not numbers and so
	// were left out of the bindings.
	Dropped []string
}

func (c *Calculator) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Calculator) compile(src string) (formula.Program, error) {
	if c.Cache == nil {
		return formula.Parse(src)
	}
	return c.Cache.Compile(src)
}

// Item computes the quantity of an item over each of its intervals.
func (c *Calculator) Item(item *Item) ItemResult {
	log := c.logger().With(zap.String("item", item.ID))
	res := ItemResult{ID: item.ID, Unit: item.Unit}
	p, err := c.compile(item.Formula)
	if err != nil {
		log.Warn("formula does not compile",
			zap.String("formula", item.Formula),
			zap.Stringer("kind", formula.KindOf(err)),
			zap.Error(err),
		)
		res.Err = err
		return res
	}
	res.Intervals = make([]IntervalResult, len(item.Intervals))
	for i := range item.Intervals {
		iv := &item.Intervals[i]
		r := &res.Intervals[i]
		r.Dropped = dropped(iv.Inputs)
		if len(r.Dropped) > 0 {
			log.Debug("inputs dropped", zap.Int("interval", i), zap.Strings("inputs", r.Dropped))
		}
		r.Quantity, r.Err = p.Eval(formula.BuildBindings(iv.Geometry(), iv.Inputs))
		if r.Err != nil {
			log.Warn("interval failed",
				zap.Int("interval", i),
				zap.Stringer("kind", formula.KindOf(r.Err)),
				zap.Error(r.Err),
			)
			continue
		}
		log.Debug("interval evaluated", zap.Int("interval", i), zap.Float64("quantity", r.Quantity))
		res.Total += r.Quantity
	}
	return res
}

// Sheet computes every item of s concurrently. The results are in the order
// of s.Items. The only errors are from ctx.
func (c *Calculator) Sheet(ctx context.Context, s *Sheet) ([]ItemResult, error) {
	res := make([]ItemResult, len(s.Items))
	g, gctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for i := range s.Items {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res[i] = c.Item(&s.Items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.logger().Debug("sheet computed", zap.Int("items", len(res)))
	return res, nil
}

func dropped(inputs map[string]any) []string {
	var names []string
	for k, v := range inputs {
		if _, ok := formula.Coerce(v); !ok {
			names = append(names, k)
		}
	}
	slices.Sort(names)
	return names
}
