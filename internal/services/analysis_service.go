package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/reports"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/scoring"
	"github.com/aristath/conviction/internal/modules/universe"
	"github.com/aristath/conviction/internal/modules/valuation"
	"github.com/aristath/conviction/pkg/logger"
)

// AnalysisConfig holds orchestration knobs.
type AnalysisConfig struct {
	FiscalYear        string
	HistoryDays       int
	StalenessWarnDays int
	StalenessMaxDays  int
	BatchConcurrency  int
}

// AnalysisService runs the full pipeline for one security: fetch, gate,
// value, assess, score, persist.
type AnalysisService struct {
	cfg AnalysisConfig

	market   domain.MarketDataProvider
	filings  domain.FilingDataProvider
	universe *universe.Repository

	valuation *valuation.Engine
	risk      *risk.Engine
	scoring   *scoring.Aggregator

	reports  *reports.Repository
	markdown *reports.MarkdownWriter

	log zerolog.Logger
	now func() time.Time
}

// NewAnalysisService wires the pipeline.
func NewAnalysisService(
	cfg AnalysisConfig,
	market domain.MarketDataProvider,
	filings domain.FilingDataProvider,
	universeRepo *universe.Repository,
	valuationEngine *valuation.Engine,
	riskEngine *risk.Engine,
	aggregator *scoring.Aggregator,
	reportsRepo *reports.Repository,
	markdown *reports.MarkdownWriter,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		cfg:       cfg,
		market:    market,
		filings:   filings,
		universe:  universeRepo,
		valuation: valuationEngine,
		risk:      riskEngine,
		scoring:   aggregator,
		reports:   reportsRepo,
		markdown:  markdown,
		log:       logger.Service(log, "analysis"),
		now:       time.Now,
	}
}

// Analyze runs the pipeline for one security and persists the report.
func (s *AnalysisService) Analyze(ctx context.Context, code string) (*reports.Report, error) {
	sec, err := s.universe.GetSecurity(ctx, code)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, fmt.Errorf("security %s not in universe", code)
	}

	now := s.now()
	var warnings []string

	end := now
	start := end.AddDate(0, 0, -s.cfg.HistoryDays)
	prices, err := s.market.FetchPriceHistory(ctx, code, start, end)
	if err != nil {
		// The risk engine degrades gracefully; the valuation side still
		// works off the snapshot.
		warnings = append(warnings, fmt.Sprintf("price history unavailable: %v", err))
		s.log.Warn().Err(err).Str("code", code).Msg("price history fetch failed")
		prices = nil
	}

	snap, err := s.market.FetchMultipleSnapshot(ctx, code)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("multiple snapshot unavailable: %v", err))
		snap = nil
	}
	snap, stalenessWarnings := s.gateStaleness(snap, now)
	warnings = append(warnings, stalenessWarnings...)

	fin, err := s.filings.FetchFinancialAggregates(ctx, code, s.cfg.FiscalYear)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("financial aggregates unavailable: %v", err))
		fin = nil
	}

	valuationResult := s.runValuation(ctx, sec, snap, prices)
	riskProfile := s.risk.Assess(risk.Inputs{Code: code, Prices: prices, Financials: fin})
	scores := s.scoring.Score(scoring.Inputs{
		Valuation: valuationResult,
		Risk:      riskProfile,
		Prices:    prices,
	})

	report := &reports.Report{
		Security:  *sec,
		Valuation: valuationResult,
		Risk:      riskProfile,
		Scores:    scores,
		Warnings:  warnings,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}
	if s.markdown != nil {
		if _, err := s.markdown.Write(report); err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("markdown render failed")
		}
	}

	s.log.Info().
		Str("code", code).
		Str("rating", string(scores.Rating)).
		Float64("conviction", scores.Conviction).
		Msg("analysis complete")
	return report, nil
}

// gateStaleness enforces the snapshot age policy: inside the warn window the
// snapshot passes with a warning, beyond the max window it is rejected and
// the pipeline proceeds as if the source had no snapshot.
func (s *AnalysisService) gateStaleness(snap *domain.MultipleSnapshot, now time.Time) (*domain.MultipleSnapshot, []string) {
	if snap == nil {
		return nil, nil
	}
	age := snap.AgeDays(now)
	if age > s.cfg.StalenessMaxDays {
		return nil, []string{fmt.Sprintf("multiple snapshot rejected: %d days old (max %d)", age, s.cfg.StalenessMaxDays)}
	}
	if age > s.cfg.StalenessWarnDays {
		return snap, []string{fmt.Sprintf("multiple snapshot is %d days old", age)}
	}
	return snap, nil
}

func (s *AnalysisService) runValuation(ctx context.Context, sec *domain.Security, snap *domain.MultipleSnapshot, prices []domain.PriceObservation) valuation.Result {
	in := valuation.Inputs{
		Code:    sec.Code,
		Name:    sec.Name,
		Sector:  sec.Sector,
		Holding: sec.HoldingCompany,
	}
	if len(prices) > 0 {
		in.CurrentPrice = prices[len(prices)-1].Close
	}
	if snap != nil {
		in.PER = snap.PER
		in.PBR = snap.PBR
		in.EPS = snap.EPS
		in.BPS = snap.BPS
	}

	if !sec.HoldingCompany {
		return s.valuation.TargetPrice(in)
	}

	navIn := valuation.NAVInputs{Inputs: in, Year: s.cfg.FiscalYear}
	if snap != nil {
		navIn.DividendYield = snap.DividendYield
	}
	if avg := avgTradedValue(prices, 20); avg > 0 {
		navIn.AvgTradedValue = &avg
	}
	return s.valuation.HoldingCompanyValuation(ctx, navIn, s.filings, s.market)
}

func avgTradedValue(prices []domain.PriceObservation, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) > window {
		prices = prices[len(prices)-window:]
	}
	var total float64
	for _, p := range prices {
		total += p.TradedValue()
	}
	return total / float64(len(prices))
}

// BatchResult summarizes a universe-wide run.
// Ranking is one security's place in a batch run.
type Ranking struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Conviction float64 `json:"conviction"`
	Rating     string  `json:"rating"`
}

type BatchResult struct {
	Analyzed int               `json:"analyzed"`
	Failed   int               `json:"failed"`
	Rankings []Ranking         `json:"rankings"`
	Errors   map[string]string `json:"errors,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// AnalyzeAll runs the pipeline for the whole universe with bounded
// concurrency. Individual failures are collected, never fatal.
func (s *AnalysisService) AnalyzeAll(ctx context.Context) (*BatchResult, error) {
	securities, err := s.universe.ListSecurities(ctx)
	if err != nil {
		return nil, err
	}

	started := s.now()
	sem := make(chan struct{}, s.cfg.BatchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &BatchResult{Errors: map[string]string{}}

	for _, sec := range securities {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(code string) {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := s.Analyze(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[code] = err.Error()
				return
			}
			result.Analyzed++
			result.Rankings = append(result.Rankings, Ranking{
				Code:       report.Security.Code,
				Name:       report.Security.Name,
				Conviction: report.Scores.Conviction,
				Rating:     string(report.Scores.Rating),
			})
		}(sec.Code)
	}
	wg.Wait()

	sort.Slice(result.Rankings, func(i, j int) bool {
		return result.Rankings[i].Conviction > result.Rankings[j].Conviction
	})
	result.Duration = s.now().Sub(started)
	s.log.Info().
		Int("analyzed", result.Analyzed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("batch analysis finished")
	return result, nil
}
