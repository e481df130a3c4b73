// Package statistics accumulates per-agent results across many hands.
package statistics

import (
	"fmt"
	"math"
	"slices"
)

// HandResult is one agent's outcome in one hand.
type HandResult struct {
	Net      int  // chips won minus chips put in
	BigBlind int  // for normalizing to big blinds
	Showdown bool // the hand was settled at showdown
	Pot      int  // total pot before rake
}

func (r HandResult) netBB() float64 {
	if r.BigBlind <= 0 {
		return 0
	}
	return float64(r.Net) / float64(r.BigBlind)
}

// Statistics is a running summary of HandResults. The zero value is ready
// to use.
type Statistics struct {
	Hands    int
	NetChips int
	SumBB    float64
	SumBB2   float64
	Values   []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64

	MaxPot int
}

// Add incorporates a hand.
func (s *Statistics) Add(r HandResult) {
	bb := r.netBB()
	s.Hands++
	s.NetChips += r.Net
	s.SumBB += bb
	s.SumBB2 += bb * bb
	s.Values = append(s.Values, bb)

	if r.Showdown {
		s.ShowdownBB += bb
		if r.Net > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += bb
		if r.Net > 0 {
			s.NonShowdownWins++
		}
	}
	s.MaxPot = max(s.MaxPot, r.Pot)
}

// Mean returns big blinds won per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// BB100 returns big blinds won per hundred hands.
func (s *Statistics) BB100() float64 {
	return s.Mean() * 100
}

// Variance returns the sample variance in big blinds.
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(0, s.Variance()))
}

func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval of the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean, margin := s.Mean(), 1.96*s.StdError()
	return mean - margin, mean + margin
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated value at p in [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	idx := p * float64(len(sorted)-1)
	lower := int(idx)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	w := idx - float64(lower)
	return sorted[lower]*(1-w) + sorted[lower+1]*w
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.NetChips += other.NetChips
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.MaxPot = max(s.MaxPot, other.MaxPot)
}

// Validate checks that the running totals agree with each other.
func (s *Statistics) Validate() error {
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values length %d does not match hands %d", len(s.Values), s.Hands)
	}
	if math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: total %.6f, showdown %.6f, non-showdown %.6f", s.SumBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("wins %d exceed hands %d", wins, s.Hands)
	}
	return nil
}
