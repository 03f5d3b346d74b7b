package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	cases := map[string]string{
		"0":       "0",
		"1":       "100",
		"1250.50": "125050",
		"0.07":    "7",
		"99.999":  "10000",
	}
	for in, want := range cases {
		assert.Equal(t, want, MinorUnits(decimal.RequireFromString(in)), "input %s", in)
	}
}
