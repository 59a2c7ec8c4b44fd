package services

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPlagiarismScoreFixedPoints(t *testing.T) {
	assert.Equal(t, 100.0, PlagiarismScore(95, 0))
	assert.Equal(t, 97.0, PlagiarismScore(92, 0))
	assert.Equal(t, 40.0, PlagiarismScore(40, 0))
	assert.Equal(t, 5.0, PlagiarismScore(1, 0))
	assert.Equal(t, 87.0, PlagiarismScore(82, 0))
	assert.Equal(t, 75.0, PlagiarismScore(75, 0))
	assert.Equal(t, 60.0, PlagiarismScore(60, 0))
}

func TestTitleBoost(t *testing.T) {
	assert.Equal(t, 70.0, TitleBoost(50, 95))
	assert.Equal(t, 65.0, TitleBoost(50, 85))
	assert.Equal(t, 60.0, TitleBoost(50, 75))
	assert.Equal(t, 50.0, TitleBoost(50, 74.9))
	assert.Equal(t, 100.0, TitleBoost(97, 100))
	assert.Equal(t, 100.0, PlagiarismScore(85, 90))
}

func TestProperty_PlagiarismBandingMonotonic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("s1 < s2 implies score(s1) <= score(s2)", prop.ForAll(
		func(s1, s2 float64) bool {
			if s1 > s2 {
				s1, s2 = s2, s1
			}
			return PlagiarismScore(s1, 0) <= PlagiarismScore(s2, 0)
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))
	properties.Property("score stays within [0, 100]", prop.ForAll(
		func(s, title float64) bool {
			p := PlagiarismScore(s, title)
			return p >= 0 && p <= 100
		},
		gen.Float64Range(-10, 120),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}

func TestApplyReportFloors(t *testing.T) {
	p, mt := ApplyReportFloors(96, 90, MatchTypeExact)
	assert.Equal(t, 95.0, p)
	assert.Equal(t, MatchTypeIdenticalContent, mt)

	p, mt = ApplyReportFloors(91, 50, MatchTypeHigh)
	assert.Equal(t, 90.0, p)
	assert.Equal(t, MatchTypeHigh, mt)

	p, _ = ApplyReportFloors(80, 99, MatchTypeHigh)
	assert.Equal(t, 99.0, p)

	p, mt = ApplyReportFloors(60, 60, MatchTypePartial)
	assert.Equal(t, 60.0, p)
	assert.Equal(t, MatchTypePartial, mt)
}

func TestApplyExactTitleFloor(t *testing.T) {
	assert.Equal(t, 90.0, ApplyExactTitleFloor(40, 50))
	assert.Equal(t, 95.0, ApplyExactTitleFloor(40, 80))
	assert.Equal(t, 98.0, ApplyExactTitleFloor(98, 10))
}
