package valuation

// Verdict classifies the current price against the synthesized target.
type Verdict string

const (
	VerdictUndervalued Verdict = "undervalued"
	VerdictFair        Verdict = "fair"
	VerdictOvervalued  Verdict = "overvalued"
)

// Inputs carries everything the target-price calculation reads. Multiples and
// per-share figures are nil when the upstream snapshot lacks them.
type Inputs struct {
	Code    string
	Name    string
	Sector  string
	Holding bool // Holding-company flag from the universe

	CurrentPrice float64
	PER          *float64
	PBR          *float64
	EPS          *float64
	BPS          *float64
}

// Result is the full output of a target-price calculation.
type Result struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`

	// Per-method targets, KRW, rounded. Nil when the method could not run.
	PERTarget *int64 `json:"per_target,omitempty"`
	PBRTarget *int64 `json:"pbr_target,omitempty"`
	NAVTarget *int64 `json:"nav_target,omitempty"`

	TargetPrice int64    `json:"target_price"`
	TargetLow   int64    `json:"target_low"`
	TargetHigh  int64    `json:"target_high"`
	UpsidePct   *float64 `json:"upside_pct,omitempty"`

	Verdict Verdict `json:"verdict"`
	Score   float64 `json:"score"`

	Methodology string     `json:"methodology"`
	Policy      PolicyKind `json:"policy"`
	Rationale   []string   `json:"rationale"`
	Caveats     []string   `json:"caveats,omitempty"`
	Comment     string     `json:"comment,omitempty"`

	// NAV is populated only on the holding-company path.
	NAV *NAVBreakdown `json:"nav,omitempty"`
}

// NAVBreakdown details the net-asset-value computation for a holding company.
type NAVBreakdown struct {
	ListedValue   float64 `json:"listed_value"`
	UnlistedValue float64 `json:"unlisted_value"`
	GrossNAV      float64 `json:"gross_nav"`
	DiscountPct   float64 `json:"discount_pct"`
	NetNAV        float64 `json:"net_nav"`
	PerShare      int64   `json:"per_share"`
	ListedCount   int     `json:"listed_count"`
	UnlistedCount int     `json:"unlisted_count"`
}
