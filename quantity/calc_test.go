package quantity_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/quantity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sheetYAML = `
items:
  - id: kerb
    name: Kerb stones
    unit: m
    formula: length
    intervals:
      - {startPk: 0, endPk: 120, side: both}
      - {startPk: 300, endPk: 340, side: left, inputs: {length: "38.5"}}
  - id: gully
    unit: ea
    formula: pointCount * count
    intervals:
      - {startPk: 50, endPk: 50, side: right, inputs: {count: 2}}
      - {startPk: 80, endPk: 80, side: R, inputs: {count: "n/a"}}
      - {startPk: 90, endPk: 90, inputs: {count: 3, note: hello}}
  - id: broken
    formula: (length
    intervals:
      - {startPk: 0, endPk: 1}
  - id: ditch
    unit: m3
    formula: length * width * depth / rate
    intervals:
      - {startPk: 0, endPk: 10, inputs: {width: 0.5, depth: 2, rate: 0}}
      - {startPk: 10, endPk: 30, inputs: {width: 0.5, depth: 2, rate: 1}}
`

func loadSheet(t *testing.T) *quantity.Sheet {
	t.Helper()
	s, err := quantity.Load(strings.NewReader(sheetYAML))
	require.NoError(t, err)
	require.Len(t, s.Items, 4)
	return s
}

func TestLoad(t *testing.T) {
	s := loadSheet(t)
	kerb := s.Items[0]
	assert.Equal(t, "Kerb stones", kerb.Name)
	assert.Equal(t, formula.SideBoth, kerb.Intervals[0].Side)
	assert.Equal(t, "38.5", kerb.Intervals[1].Inputs["length"])
	assert.Equal(t, formula.SideRight, s.Items[1].Intervals[1].Side)
	assert.Equal(t, formula.SideLeft, s.Items[1].Intervals[2].Side)

	empty, err := quantity.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown-field": "items:\n  - id: a\n    formla: x\n",
		"bad-side":      "items:\n  - id: a\n    formula: x\n    intervals:\n      - {side: middle}\n",
		"not-yaml":      "items: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := quantity.Load(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestItem(t *testing.T) {
	s := loadSheet(t)
	var c quantity.Calculator

	kerb := c.Item(&s.Items[0])
	require.NoError(t, kerb.Err)
	require.Len(t, kerb.Intervals, 2)
	assert.Equal(t, 240.0, kerb.Intervals[0].Quantity)
	assert.Equal(t, 38.5, kerb.Intervals[1].Quantity)
	assert.Equal(t, 278.5, kerb.Total)
	assert.Equal(t, "m", kerb.Unit)
	assert.Zero(t, kerb.Failed())

	gully := c.Item(&s.Items[1])
	require.NoError(t, gully.Err)
	assert.Equal(t, 5.0, gully.Total)
	assert.Equal(t, 1, gully.Failed())
	assert.Equal(t, formula.KindUndefinedVariable, formula.KindOf(gully.Intervals[1].Err))
	assert.Equal(t, []string{"count"}, gully.Intervals[1].Dropped)
	assert.Equal(t, []string{"note"}, gully.Intervals[2].Dropped)

	broken := c.Item(&s.Items[2])
	assert.Equal(t, formula.KindUnbalancedParens, formula.KindOf(broken.Err))
	assert.Empty(t, broken.Intervals)
	assert.Zero(t, broken.Total)

	ditch := c.Item(&s.Items[3])
	require.NoError(t, ditch.Err)
	assert.Equal(t, formula.KindDivisionByZero, formula.KindOf(ditch.Intervals[0].Err))
	assert.Equal(t, 20.0, ditch.Intervals[1].Quantity)
	assert.Equal(t, 20.0, ditch.Total)
}

func TestItemLogs(t *testing.T) {
	s := loadSheet(t)
	core, logs := observer.New(zap.DebugLevel)
	c := quantity.Calculator{Logger: zap.New(core)}
	c.Item(&s.Items[1])
	c.Item(&s.Items[2])

	warns := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warns, 2)
	assert.Equal(t, "interval failed", warns[0].Message)
	assert.Equal(t, "gully", warns[0].ContextMap()["item"])
	assert.Equal(t, "undefined-variable", warns[0].ContextMap()["kind"])
	assert.Equal(t, "formula does not compile", warns[1].Message)
	assert.Equal(t, 2, logs.FilterMessage("interval evaluated").Len())
	assert.Equal(t, 2, logs.FilterMessage("inputs dropped").Len())
}

func TestSheet(t *testing.T) {
	s := loadSheet(t)
	cache := formula.NewCache(0)
	c := quantity.Calculator{Cache: cache, Workers: 2}
	res, err := c.Sheet(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res, len(s.Items))
	for i, r := range res {
		assert.Equal(t, s.Items[i].ID, r.ID)
	}
	assert.Equal(t, 278.5, res[0].Total)
	assert.Equal(t, 5.0, res[1].Total)
	assert.Error(t, res[2].Err)
	assert.Equal(t, 20.0, res[3].Total)
	assert.Equal(t, 4, cache.Len())

	again, err := c.Sheet(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, res[0].Total, again[0].Total)
	assert.Equal(t, int64(4), cache.Stats().Hits)
}

func TestSheetCanceled(t *testing.T) {
	s := loadSheet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c quantity.Calculator
	res, err := c.Sheet(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}
