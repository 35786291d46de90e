package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"한사발", "한그릇"},
		{"한 사발", "한그릇"},
		{"1인분", "1그릇"},
		{"한공기", "한그릇"},
		{"한잔", "한컵"},
		{"한스푼", "한큰술"},
		{"한쪽", "한조각"},
		{"한캔", "한개"},
		{"두그릇", "두그릇"},
		{"150g", "150g"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeAmount(tc.in))
		})
	}
}

func TestGramsFromText(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		found bool
	}{
		{"150g", 150, true},
		{"150 g", 150, true},
		{"200그램", 200, true},
		{"0.5g", 0.5, true},
		{"2kg", 2000, true},
		{"1.5kg", 1500, true},
		{"2킬로", 2000, true},
		{"1킬로그램", 1000, true},
		{"한그릇", 0, false},
		{"g", 0, false},
		{"", 0, false},
		{"-10g", 10, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := GramsFromText(tc.in)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
