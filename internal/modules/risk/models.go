package risk

// Grade is the discrete composite risk band.
type Grade string

const (
	GradeLow          Grade = "Low"
	GradeModerate     Grade = "Moderate"
	GradeModerateHigh Grade = "Moderate-High"
	GradeHigh         Grade = "High"
	// GradeUnknown is returned when too few price points exist to say
	// anything useful.
	GradeUnknown Grade = "Unknown (insufficient data)"
)

// Severity bands a stress scenario's estimated loss.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityNeutral  Severity = "neutral"
)

// MarketStats are the derived market statistics. Every field is nullable:
// a nil field means the price window was too short for that statistic.
type MarketStats struct {
	Volatility   *float64 `json:"volatility,omitempty"`      // Annualized
	Beta         *float64 `json:"beta,omitempty"`            // Blume-adjusted volatility proxy
	VaR95        *float64 `json:"var_95,omitempty"`          // One-day, positive = loss
	CVaR95       *float64 `json:"cvar_95,omitempty"`         // One-day, positive = loss
	MaxDrawdown  *float64 `json:"max_drawdown,omitempty"`    // Fraction
	RecoveryDays *int     `json:"recovery_days,omitempty"`   // Nil if never recovered
}

// CreditStats are the balance-sheet ratios behind the credit score.
type CreditStats struct {
	AltmanZ          *float64 `json:"altman_z,omitempty"`
	Zone             string   `json:"zone,omitempty"` // safe / grey / distress
	DebtEquity       *float64 `json:"debt_equity,omitempty"`
	NetDebtRatio     *float64 `json:"net_debt_ratio,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"` // +Inf when interest expense is zero
	DebtEBITDA       *float64 `json:"debt_ebitda,omitempty"`
	RedFlags         []string `json:"red_flags,omitempty"`
}

// StressScenario is one forward-looking shock estimate.
type StressScenario struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LossPct     float64  `json:"loss_pct"` // Negative = loss
	Severity    Severity `json:"severity"`
}

// Profile is the full risk assessment for one security.
type Profile struct {
	Code string `json:"code"`

	MarketScore        float64 `json:"market_score"`
	CreditScore        float64 `json:"credit_score"`
	LiquidityScore     float64 `json:"liquidity_score"`
	ConcentrationScore float64 `json:"concentration_score"`
	CompositeScore     float64 `json:"composite_score"`
	Grade              Grade   `json:"grade"`

	LiquidityGrade string `json:"liquidity_grade,omitempty"` // A-F

	Market MarketStats `json:"market"`
	Credit CreditStats `json:"credit"`

	Scenarios []StressScenario `json:"scenarios,omitempty"`
	KeyRisks  []string         `json:"key_risks"`
}
