package profile

// ExitPolicy is the per-strategy supervision configuration handed to the
// risk circuit when a trade is approved. Scalping trails earlier and
// locks in more of the move than swing; mean reversion and grid do not
// trail at all.
type ExitPolicy struct {
	// TimeExitMinutes force-closes a stagnant trade after this holding
	// time if it has not made meaningful progress toward the target.
	TimeExitMinutes int `yaml:"time_exit_minutes"`

	// Trailing enables the trailing stop once the trade has progressed
	// past TrailTriggerPct percent of the way to the target.
	Trailing        bool    `yaml:"trailing"`
	TrailTriggerPct float64 `yaml:"trail_trigger_pct"`

	// TrailLockIn is the fraction of the traveled distance locked in by
	// the trailing stop.
	TrailLockIn float64 `yaml:"trail_lock_in"`
}
