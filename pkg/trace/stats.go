package trace

import (
	"regexp"
	"strconv"
)

// Stats holds the search statistics a planner prints. Nil fields were not
// reported; when a statistic appears several times the last value wins.
type Stats struct {
	Cost            *float64 `json:"cost,omitempty"`
	Metric          *float64 `json:"metric,omitempty"`
	TimeSeconds     *float64 `json:"time_seconds,omitempty"`
	StatesEvaluated *int     `json:"states_evaluated,omitempty"`
}

// Found reports whether any statistic was present.
func (s Stats) Found() bool {
	return s.Cost != nil || s.Metric != nil || s.TimeSeconds != nil || s.StatesEvaluated != nil
}

var (
	costRe   = regexp.MustCompile(`; Cost:\s*([0-9]+(?:\.[0-9]+)?)`)
	timeRe   = regexp.MustCompile(`; Time\s*([0-9]+(?:\.[0-9]+)?)`)
	statesRe = regexp.MustCompile(`; States evaluated:?\s*([0-9]+)`)
	metricRe = regexp.MustCompile(`; Plan found with metric\s*([0-9]+(?:\.[0-9]+)?)`)
)

func lastMatch(re *regexp.Regexp, text string) (string, bool) {
	all := re.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1][1], true
}

func lastFloat(re *regexp.Regexp, text string) *float64 {
	s, ok := lastMatch(re, text)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseStats(text string) Stats {
	s := Stats{
		Cost:        lastFloat(costRe, text),
		Metric:      lastFloat(metricRe, text),
		TimeSeconds: lastFloat(timeRe, text),
	}
	if v, ok := lastMatch(statesRe, text); ok {
		if n, err := strconv.Atoi(v); err == nil {
			s.StatesEvaluated = &n
		}
	}
	return s
}
