package fileio

import (
	"errors"
	"testing"

	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  project_types.Shape
	}{
		{
			name:  "comma separated points",
			input: "144.95 -37.81, 144.96 -37.81, 144.96 -37.82",
			want:  project_types.Shape{{{144.95, -37.81}, {144.96, -37.81}, {144.96, -37.82}}},
		},
		{
			name:  "extra whitespace",
			input: "  1 2 ,\t3   4,5 6  ",
			want:  project_types.Shape{{{1, 2}, {3, 4}, {5, 6}}},
		},
		{
			name:  "flat token list is paired",
			input: "0 0 1 0 1 1",
			want:  project_types.Shape{{{0, 0}, {1, 0}, {1, 1}}},
		},
		{
			name:  "semicolon separated rings",
			input: "0 0, 4 0, 4 4; 1 1, 2 1, 2 2",
			want:  project_types.Shape{{{0, 0}, {4, 0}, {4, 4}}, {{1, 1}, {2, 1}, {2, 2}}},
		},
		{
			name:  "wkt polygon",
			input: "POLYGON ((0 0, 4 0, 4 4), (1 1, 2 1, 2 2))",
			want:  project_types.Shape{{{0, 0}, {4, 0}, {4, 4}}, {{1, 1}, {2, 1}, {2, 2}}},
		},
		{
			name:  "wkt multipolygon",
			input: "MULTIPOLYGON (((0 0, 1 0, 1 1)), ((2 2, 3 2, 3 3)))",
			want:  project_types.Shape{{{0, 0}, {1, 0}, {1, 1}}, {{2, 2}, {3, 2}, {3, 3}}},
		},
		{
			name:  "scientific notation",
			input: "1e2 -2.5E-1",
			want:  project_types.Shape{{{100, -0.25}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShape(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseShape_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ring   int
		reason string
	}{
		{"empty", "   ", 0, "empty shape"},
		{"odd ordinates", "0 0, 1", 0, "odd number of ordinates"},
		{"odd flat list", "0 0 1", 0, "odd number of ordinates"},
		{"not a number", "0 0, abc 1", 0, "not a finite number"},
		{"nan", "NaN 0", 0, "not a finite number"},
		{"infinity", "0 0; 1 Inf", 1, "not a finite number"},
		{"empty ring", "0 0;; 1 1", 1, "empty ring"},
		{"empty point", "0 0,, 1 1", 0, "empty point"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := ParseShape(tt.input)
			require.Error(t, err)
			assert.Nil(t, shape)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.ring, parseErr.Ring)
			assert.Equal(t, tt.reason, parseErr.Reason)
		})
	}
}

func TestParseShape_RoundTrip(t *testing.T) {
	inputs := []string{
		"144.9468 -37.7907, 144.9512 -37.7921, 144.9533 -37.7988, 144.9468 -37.7907",
		"0.1 0.2 0.30000000000000004 1e-9; -5 5, 6 -6",
		"MULTIPOLYGON (((1 1, 2 2, 3 1)), ((10 10, 11 11, 12 10)))",
	}

	for _, input := range inputs {
		first, err := ParseShape(input)
		require.NoError(t, err)
		again, err := ParseShape(input)
		require.NoError(t, err)
		assert.Equal(t, first, again)

		reparsed, err := ParseShape(first.String())
		require.NoError(t, err)
		assert.Equal(t, first, reparsed)
	}
}
