package stats

import (
	"strconv"
	"strings"
	"testing"
)

func FuzzRangeFilterInvariants(f *testing.F) {
	f.Add("1,5,10,-3,7", 3)
	f.Add("42", 5)
	f.Add("-1000,2,3,4,7,8,10,17,100,101,102,103,123456", 3)
	f.Fuzz(func(t *testing.T, raw string, maxRanges int) {
		var values []int64
		for _, tok := range strings.Split(raw, ",") {
			v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return
		}
		if maxRanges < 1 {
			maxRanges = 1
		}
		if maxRanges > 1000 {
			maxRanges = 1000
		}

		f, err := Build(values, maxRanges)
		if err != nil {
			t.Fatalf("Build returned an error on non-empty input: %v", err)
		}

		if len(f.ranges) > maxRanges {
			t.Fatalf("built %d ranges, requested at most %d", len(f.ranges), maxRanges)
		}
		for i, r := range f.ranges {
			if r.Lo > r.Hi {
				t.Fatalf("range %d not lo<=hi: %+v", i, r)
			}
			if i > 0 && !(f.ranges[i-1].Hi < r.Lo) {
				t.Fatalf("ranges %d and %d are not strictly ordered/disjoint: %+v, %+v", i-1, i, f.ranges[i-1], r)
			}
		}
		if f.min != f.ranges[0].Lo || f.max != f.ranges[len(f.ranges)-1].Hi {
			t.Fatalf("min/max %d/%d do not match outer range bounds", f.min, f.max)
		}
		for _, v := range values {
			if f.EstimateCardinality(Equals, v) != MatchesApproximately {
				t.Fatalf("value %d present at build time must never be pruned", v)
			}
		}
	})
}
