package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantFrom, wantLm int
	}{
		{name: "defaults", page: 0, size: 0, wantFrom: 0, wantLm: DefaultPageSize},
		{name: "second page", page: 2, size: 25, wantFrom: 25, wantLm: 25},
		{name: "negative page", page: -3, size: 5, wantFrom: 0, wantLm: 5},
		{name: "oversized", page: 3, size: MaxPageSize + 1, wantFrom: 2 * DefaultPageSize, wantLm: DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLm, limit)
		})
	}
}
