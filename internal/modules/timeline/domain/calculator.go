package domain

// Result is a derived duration. Available is false when either endpoint
// event is unset.
type Result struct {
	RuleID    string
	Duration  Duration
	Available bool
}

// String renders unavailable results as a zero duration so exporters never
// see an empty value.
func (r Result) String() string {
	if !r.Available {
		return ZeroDuration
	}
	return r.Duration.String()
}

// Compute derives rule from the current event times.
func Compute(rule DurationRule, times EventTimes) Result {
	start, okStart := times.Time(rule.Start)
	end, okEnd := times.Time(rule.End)
	if !okStart || !okEnd {
		return Result{RuleID: rule.ID}
	}
	return Result{RuleID: rule.ID, Duration: start.Until(end), Available: true}
}

func ComputeAll(rules []DurationRule, times EventTimes) map[string]Result {
	out := make(map[string]Result, len(rules))
	for _, rule := range rules {
		out[rule.ID] = Compute(rule, times)
	}
	return out
}
