package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintExcludedIsSortedByReason(t *testing.T) {
	excluded := map[string]int{
		"undefined_feature": 4,
		"missing_label":     2,
		"unknown_category":  1,
	}

	for i := 0; i < 10; i++ {
		var buf bytes.Buffer
		printExcluded(&buf, excluded)
		assert.Equal(t,
			"excluded missing_label: 2\nexcluded undefined_feature: 4\nexcluded unknown_category: 1\n",
			buf.String(),
		)
	}
}

func TestPrintExcludedEmpty(t *testing.T) {
	var buf bytes.Buffer
	printExcluded(&buf, nil)
	assert.Empty(t, buf.String())
}
