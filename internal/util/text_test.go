package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	// "e" + combining acute composes to "é".
	assert.Equal(t, "Qu\u00e9bec QC", NormalizeText("  Que\u0301bec\u00a0\t QC \n"))
}

func TestTrimValueTail(t *testing.T) {
	cases := map[string]string{
		"456 Main St.":   "456 Main St",
		"Downtown, ":     "Downtown",
		"Suite 5 ,.\t\n": "Suite 5",
		"":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimValueTail(in), in)
	}
}

func TestContainsDigit(t *testing.T) {
	assert.True(t, ContainsDigit("123"))
	assert.True(t, ContainsDigit("Branch 7"))
	assert.False(t, ContainsDigit("Springfield"))
	assert.False(t, ContainsDigit(""))
}

func TestFindBranchNumbers(t *testing.T) {
	text := "00109980 00300236\nref 123456789 skip\nbranch:81900267."
	assert.Equal(t, []string{"00109980", "00300236", "81900267"}, FindBranchNumbers(text))
}
