package valuation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), NewOverrideRegistry(), zerolog.Nop())
}

func TestTargetPrice_EarningsMethod(t *testing.T) {
	e := newTestEngine()

	// EPS 5000 under the default 12x baseline, nothing triggering a
	// discount, no book value: the earnings method alone sets the target.
	res := e.TargetPrice(Inputs{
		Code:         "005930",
		Name:         "Alpha Electronics",
		Sector:       "unknown-sector",
		CurrentPrice: 50000,
		EPS:          f(5000),
	})

	require.NotNil(t, res.PERTarget)
	assert.Equal(t, int64(60000), *res.PERTarget)
	assert.Equal(t, int64(60000), res.TargetPrice)
	assert.Equal(t, int64(51000), res.TargetLow)
	assert.Equal(t, int64(69000), res.TargetHigh)
	require.NotNil(t, res.UpsidePct)
	assert.InDelta(t, 20.0, *res.UpsidePct, 0.001)
	assert.Equal(t, PolicyStandard, res.Policy)
	assert.Nil(t, res.PBRTarget)
}

func TestTargetPrice_MarketImpliedDiscountAndFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SectorPER["widgets"] = 10.0
	e := NewEngine(cfg, NewOverrideRegistry(), zerolog.Nop())

	// Current multiple of 40 against a baseline of 10: the market already
	// prices a severe earnings impairment. The implied discount caps at 30%
	// and the adjusted multiple (8.5) is lifted to the 1.2x-current floor.
	in := Inputs{
		Code:         "100200",
		Sector:       "widgets",
		CurrentPrice: 40000,
		PER:          f(40),
		EPS:          f(1000),
	}
	rm := e.resolve(in)

	assert.InDelta(t, 0.30, rm.discount.Total, 1e-9)
	assert.InDelta(t, 48.0, rm.per, 1e-9)
}

func TestTargetPrice_DiscountCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SectorPER["widgets"] = 10.0
	e := NewEngine(cfg, NewOverrideRegistry(), zerolog.Nop())

	// Holding structure (40%) + low price (5%) + market-implied (30%)
	// overflows the 60% cap.
	rm := e.resolve(Inputs{
		Code:         "100300",
		Sector:       "widgets",
		Holding:      true,
		CurrentPrice: 4000,
		PER:          f(40),
	})
	assert.InDelta(t, 0.60, rm.discount.Total, 1e-9)
}

func TestTargetPrice_Idempotent(t *testing.T) {
	e := newTestEngine()
	in := Inputs{
		Code:         "035420",
		Sector:       "internet",
		CurrentPrice: 180000,
		PER:          f(22),
		PBR:          f(1.1),
		EPS:          f(8000),
		BPS:          f(160000),
	}
	first := e.TargetPrice(in)
	second := e.TargetPrice(in)
	assert.Equal(t, first, second)
}

func TestTargetPrice_UpsideFallsAsPriceRises(t *testing.T) {
	e := newTestEngine()

	// Multiples held fixed: a higher entry price can only shrink the upside.
	in := Inputs{
		Code:   "005930",
		Sector: "unknown-sector",
		PER:    f(10),
		PBR:    f(1.0),
		EPS:    f(5000),
		BPS:    f(40000),
	}

	var prev *float64
	for _, price := range []float64{20000, 40000, 55000, 70000, 90000} {
		in.CurrentPrice = price
		res := e.TargetPrice(in)
		require.NotNil(t, res.UpsidePct, "price %.0f", price)
		if prev != nil {
			assert.Less(t, *res.UpsidePct, *prev, "price %.0f", price)
		}
		up := *res.UpsidePct
		prev = &up
	}
}

func TestTargetPrice_PeerPolicy(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Set(Policy{
		Code:    "000660",
		Kind:    PolicyPeer,
		PeerName: "Micron",
		PeerPER: f(10),
		Caveats: []string{"peer reports in USD"},
	})
	e := NewEngine(DefaultConfig(), reg, zerolog.Nop())

	res := e.TargetPrice(Inputs{
		Code:         "000660",
		Sector:       "memory-semiconductor",
		CurrentPrice: 90000,
		EPS:          f(9000),
		BPS:          f(70000),
	})

	assert.Equal(t, PolicyPeer, res.Policy)
	require.NotNil(t, res.PERTarget)
	assert.Equal(t, int64(90000), *res.PERTarget)
	// No peer PBR registered: the 1.5x fallback applies.
	require.NotNil(t, res.PBRTarget)
	assert.Equal(t, int64(105000), *res.PBRTarget)
	assert.Contains(t, res.Caveats, "peer reports in USD")
}

func TestTargetPrice_CustomPolicy(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Set(Policy{
		Code:      "005380",
		Kind:      PolicyCustom,
		CustomPER: f(6),
		CustomPBR: f(0.7),
		Comment:   "conservative stance into the model cycle",
	})
	e := NewEngine(DefaultConfig(), reg, zerolog.Nop())

	res := e.TargetPrice(Inputs{
		Code:         "005380",
		Sector:       "auto",
		CurrentPrice: 200000,
		EPS:          f(30000),
		BPS:          f(300000),
	})

	assert.Equal(t, PolicyCustom, res.Policy)
	require.NotNil(t, res.PERTarget)
	assert.Equal(t, int64(180000), *res.PERTarget)
	require.NotNil(t, res.PBRTarget)
	assert.Equal(t, int64(210000), *res.PBRTarget)
	assert.Equal(t, "conservative stance into the model cycle", res.Comment)
}

func TestTargetPrice_BlendRenormalizes(t *testing.T) {
	e := newTestEngine()

	// Both methods available: weights 0.4/0.3 renormalize to 4/7 and 3/7.
	res := e.TargetPrice(Inputs{
		Code:         "000001",
		Sector:       "unknown",
		CurrentPrice: 10000,
		EPS:          f(1000), // 12x -> 12000
		BPS:          f(5000), // 1.2x -> 6000
	})
	require.NotNil(t, res.PERTarget)
	require.NotNil(t, res.PBRTarget)
	// (12000*0.4 + 6000*0.3) / 0.7 = 9428.57 -> rounds to 9000
	assert.Equal(t, int64(9000), res.TargetPrice)
}

func TestTargetPrice_NoMethodsFallsBackToPrice(t *testing.T) {
	e := newTestEngine()
	res := e.TargetPrice(Inputs{
		Code:         "000002",
		Sector:       "unknown",
		CurrentPrice: 15400,
		EPS:          f(-2000),
	})
	assert.Nil(t, res.PERTarget)
	assert.Nil(t, res.PBRTarget)
	assert.Equal(t, int64(15000), res.TargetPrice)
	assert.Contains(t, res.Caveats, "no valuation method applicable: target anchored to current price")
}

func TestScoreMultiples_Banding(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		per     *float64
		pbr     *float64
		want    float64
		verdict Verdict
	}{
		{"deeply cheap on both", f(6), f(0.7), 90, VerdictUndervalued},
		{"mildly cheap", f(10), f(1.0), 73, VerdictUndervalued},
		{"fair", f(12), f(1.2), 50, VerdictFair},
		{"rich", f(14), f(1.4), 27, VerdictOvervalued},
		{"deeply rich", f(20), f(2.0), 10, VerdictOvervalued},
		{"missing multiples stay neutral", nil, nil, 50, VerdictFair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Inputs{Code: "X", Sector: "unknown", CurrentPrice: 10000, PER: tt.per, PBR: tt.pbr}
			rm := resolvedMultiples{policy: PolicyStandard, per: 12.0, pbr: 1.2}
			got := e.scoreMultiples(in, rm)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.Equal(t, tt.verdict, e.verdictFromScore(got))
		})
	}
}

func TestVerdictBandEdges(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, VerdictUndervalued, e.verdictFromScore(65))
	assert.Equal(t, VerdictFair, e.verdictFromScore(64.999))
	assert.Equal(t, VerdictFair, e.verdictFromScore(35))
	assert.Equal(t, VerdictOvervalued, e.verdictFromScore(34.999))
}
