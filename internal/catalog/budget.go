package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/david/syncscout/internal/models"
)

// FallbackRevenue is used when a budget label carries no amount.
var FallbackRevenue = models.Revenue{Min: 1000, Max: 5000, Average: 3000}

var amountRegex = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*([kKmM])?`)

// ParseBudget extracts the revenue range from a budget label such as
// "$15,000 - $25,000". Only dollar-prefixed amounts count, with an optional
// k or M suffix. A single amount is read as the minimum with a maximum 50%
// above it. ok is false when no amount was found.
func ParseBudget(label string) (rev models.Revenue, ok bool) {
	var amounts []float64
	for _, m := range amountRegex.FindAllStringSubmatch(label, -1) {
		val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || val <= 0 {
			continue
		}
		switch m[2] {
		case "k", "K":
			val *= 1_000
		case "m", "M":
			val *= 1_000_000
		}
		amounts = append(amounts, val)
		if len(amounts) == 2 {
			break
		}
	}

	switch len(amounts) {
	case 0:
		return FallbackRevenue, false
	case 1:
		lo := amounts[0]
		return newRevenue(lo, lo*1.5), true
	default:
		lo, hi := amounts[0], amounts[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return newRevenue(lo, hi), true
	}
}

// EstimateRevenue is ParseBudget with the fallback applied.
func EstimateRevenue(label string) models.Revenue {
	rev, _ := ParseBudget(label)
	return rev
}

func newRevenue(lo, hi float64) models.Revenue {
	minAmt := int64(math.Floor(lo + 0.5))
	maxAmt := int64(math.Floor(hi + 0.5))
	return models.Revenue{
		Min:     minAmt,
		Max:     maxAmt,
		Average: int64(math.Floor(float64(minAmt+maxAmt)/2 + 0.5)),
	}
}

// CompetitionFor tiers an opportunity by its average payout.
func CompetitionFor(rev models.Revenue) models.Competition {
	switch avg := rev.Average; {
	case avg > 50000:
		return models.CompetitionVeryHigh
	case avg > 25000:
		return models.CompetitionHigh
	case avg > 10000:
		return models.CompetitionMedium
	default:
		return models.CompetitionLow
	}
}
