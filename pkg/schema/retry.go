package schema

// Backoff strategies for RetryPolicy.
const (
	BackoffNone        = "none"
	BackoffConstant    = "constant"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// DefaultMaxAttempts is used when a RetryPolicy leaves MaxAttempts unset.
const DefaultMaxAttempts = 2

// RetryPolicy configures how often a failing agent is attempted.
type RetryPolicy struct {
	MaxAttempts int    `json:"max_attempts,omitempty" yaml:"max_attempts"` // total attempts including the first
	Backoff     string `json:"backoff,omitempty" yaml:"backoff"`           // none | constant | linear | exponential
	Delay       string `json:"delay,omitempty" yaml:"delay"`               // base delay, e.g. "500ms"
	MaxDelay    string `json:"max_delay,omitempty" yaml:"max_delay"`       // cap on the computed delay
}

// Attempts returns MaxAttempts, or DefaultMaxAttempts when unset.
func (p *RetryPolicy) Attempts() int {
	if p == nil || p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}
