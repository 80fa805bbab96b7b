package valuation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/pkg/formulas"
	"github.com/aristath/conviction/pkg/logger"
)

// Engine synthesizes target prices from market multiples. All calculations
// are deterministic functions of the inputs, config, and registered policies.
type Engine struct {
	cfg       Config
	overrides *OverrideRegistry
	log       zerolog.Logger
}

// NewEngine creates a valuation engine.
func NewEngine(cfg Config, overrides *OverrideRegistry, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		overrides: overrides,
		log:       logger.Engine(log, "valuation"),
	}
}

// resolvedMultiples are the target multiples after policy resolution.
type resolvedMultiples struct {
	per      float64
	pbr      float64
	policy   PolicyKind
	discount structuralDiscount
	peerName string
	caveats  []string
	comment  string
}

// resolve maps a security to its target multiples. Peer and custom policies
// take the registered multiples with sector fallbacks; the standard policy
// applies the structural discount to the sector baselines.
func (e *Engine) resolve(in Inputs) resolvedMultiples {
	basePER := e.cfg.sectorPER(in.Sector)

	if p, ok := e.overrides.Get(in.Code); ok {
		r := resolvedMultiples{
			policy:  p.Kind,
			per:     basePER,
			pbr:     e.cfg.FallbackPeerPBR,
			caveats: p.Caveats,
			comment: p.Comment,
		}
		switch p.Kind {
		case PolicyPeer:
			r.peerName = p.PeerName
			if p.PeerPER != nil && *p.PeerPER > 0 {
				r.per = *p.PeerPER
			}
			if p.PeerPBR != nil && *p.PeerPBR > 0 {
				r.pbr = *p.PeerPBR
			}
			return r
		case PolicyCustom:
			if p.CustomPER != nil && *p.CustomPER > 0 {
				r.per = *p.CustomPER
			}
			if p.CustomPBR != nil && *p.CustomPBR > 0 {
				r.pbr = *p.CustomPBR
			}
			return r
		}
		// Unknown kinds degrade to standard resolution below.
	}

	d := e.analyzeDiscount(in, basePER)
	return resolvedMultiples{
		policy:   PolicyStandard,
		per:      e.adjustMultiple(basePER, in.PER, d, e.cfg.MultipleFloorAbs),
		pbr:      e.adjustMultiple(e.cfg.sectorPBR(in.Sector), in.PBR, d, e.cfg.BookFloorAbs),
		discount: d,
	}
}

// TargetPrice computes the blended target price and verdict for a security.
// Repeated calls with identical inputs and registry state yield identical
// results.
func (e *Engine) TargetPrice(in Inputs) Result {
	rm := e.resolve(in)

	res := Result{
		Code:         in.Code,
		Name:         in.Name,
		CurrentPrice: in.CurrentPrice,
		Policy:       rm.policy,
		Caveats:      append([]string(nil), rm.caveats...),
		Comment:      rm.comment,
	}

	switch rm.policy {
	case PolicyPeer:
		res.Methodology = "peer-anchored multiples"
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("multiples anchored to peer %s (PER %.1f, PBR %.1f)", rm.peerName, rm.per, rm.pbr))
	case PolicyCustom:
		res.Methodology = "analyst multiples"
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("analyst-supplied multiples (PER %.1f, PBR %.1f)", rm.per, rm.pbr))
	default:
		res.Methodology = "sector-relative multiples"
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("sector %q baseline PER %.1f, adjusted to %.1f", in.Sector, e.cfg.sectorPER(in.Sector), rm.per))
		res.Rationale = append(res.Rationale, rm.discount.Factors...)
		if rm.discount.Cyclical {
			res.Caveats = append(res.Caveats, "cyclical sector: trailing earnings may be off-cycle and distort the multiple")
		}
	}

	// Per-method targets.
	var methods []string
	if in.EPS != nil && *in.EPS > 0 {
		t := formulas.RoundToUnit(*in.EPS*rm.per, e.cfg.RoundingUnit)
		res.PERTarget = &t
		methods = append(methods, fmt.Sprintf("earnings method: %.0f EPS x %.1f = %d", *in.EPS, rm.per, t))
	} else {
		res.Caveats = append(res.Caveats, "earnings method skipped: EPS missing or non-positive")
	}
	if in.BPS != nil && *in.BPS > 0 {
		t := formulas.RoundToUnit(*in.BPS*rm.pbr, e.cfg.RoundingUnit)
		res.PBRTarget = &t
		methods = append(methods, fmt.Sprintf("book method: %.0f BPS x %.2f = %d", *in.BPS, rm.pbr, t))
	} else {
		res.Caveats = append(res.Caveats, "book method skipped: BPS missing or non-positive")
	}
	res.Rationale = append(res.Rationale, methods...)

	// Blend with renormalized weights over the methods that produced a value.
	var weighted, totalW float64
	if res.PERTarget != nil {
		weighted += float64(*res.PERTarget) * e.cfg.PERWeight
		totalW += e.cfg.PERWeight
	}
	if res.PBRTarget != nil {
		weighted += float64(*res.PBRTarget) * e.cfg.PBRWeight
		totalW += e.cfg.PBRWeight
	}
	if totalW > 0 {
		res.TargetPrice = formulas.RoundToUnit(weighted/totalW, e.cfg.RoundingUnit)
	} else {
		res.TargetPrice = formulas.RoundToUnit(in.CurrentPrice, e.cfg.RoundingUnit)
		res.Caveats = append(res.Caveats, "no valuation method applicable: target anchored to current price")
	}

	res.TargetLow = formulas.RoundToUnit(float64(res.TargetPrice)*(1-e.cfg.BandPct), e.cfg.RoundingUnit)
	res.TargetHigh = formulas.RoundToUnit(float64(res.TargetPrice)*(1+e.cfg.BandPct), e.cfg.RoundingUnit)

	if in.CurrentPrice > 0 {
		up := (float64(res.TargetPrice) - in.CurrentPrice) / in.CurrentPrice * 100
		res.UpsidePct = &up
	}

	res.Score = e.scoreMultiples(in, rm)
	res.Verdict = e.verdictFromScore(res.Score)

	if in.PER != nil && rm.per > 0 && *in.PER > e.cfg.OverstretchedRatio*rm.per {
		res.Caveats = append(res.Caveats, "current multiple well above target: rerating risk")
	}

	e.log.Debug().
		Str("code", in.Code).
		Int64("target", res.TargetPrice).
		Str("verdict", string(res.Verdict)).
		Msg("target price synthesized")
	return res
}

// scoreMultiples produces a 0-100 valuation score. 50 is neutral; cheap
// multiples relative to target push the score up, rich multiples push it down.
func (e *Engine) scoreMultiples(in Inputs, rm resolvedMultiples) float64 {
	score := 50.0
	if in.PER != nil && *in.PER > 0 && rm.per > 0 {
		switch ratio := *in.PER / rm.per; {
		case ratio < e.cfg.RatioStrongLow:
			score += 25
		case ratio < e.cfg.RatioLow:
			score += 15
		case ratio < e.cfg.RatioHigh:
			// Fairly priced on earnings.
		case ratio < e.cfg.RatioStrongHigh:
			score -= 15
		default:
			score -= 25
		}
	}
	if in.PBR != nil && *in.PBR > 0 && rm.pbr > 0 {
		switch ratio := *in.PBR / rm.pbr; {
		case ratio < e.cfg.RatioStrongLow:
			score += 15
		case ratio < e.cfg.RatioLow:
			score += 8
		case ratio < e.cfg.RatioHigh:
		case ratio < e.cfg.RatioStrongHigh:
			score -= 8
		default:
			score -= 15
		}
	}
	return formulas.Clamp(score, 0, 100)
}

func (e *Engine) verdictFromScore(score float64) Verdict {
	switch {
	case score >= e.cfg.UndervaluedMin:
		return VerdictUndervalued
	case score >= e.cfg.FairMin:
		return VerdictFair
	default:
		return VerdictOvervalued
	}
}
