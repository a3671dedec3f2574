package geo_test

import (
	"testing"

	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestFromMapURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantLat float64
		wantLng float64
		wantOK  bool
	}{
		{
			name:    "at fragment with zoom suffix",
			input:   "https://www.google.com/maps/place/Bengaluru/@12.9716,77.5946,15z",
			wantLat: 12.9716,
			wantLng: 77.5946,
			wantOK:  true,
		},
		{
			name:    "query fragment",
			input:   "https://maps.google.com/?q=12.9,77.5",
			wantLat: 12.9,
			wantLng: 77.5,
			wantOK:  true,
		},
		{
			name:    "query fragment as secondary parameter",
			input:   "https://maps.google.com/?hl=en&q=12.9,77.5",
			wantLat: 12.9,
			wantLng: 77.5,
			wantOK:  true,
		},
		{
			name:    "negative coordinates",
			input:   "https://www.google.com/maps/@-33.8688,151.2093,12z",
			wantLat: -33.8688,
			wantLng: 151.2093,
			wantOK:  true,
		},
		{
			name:    "at fragment wins over query fragment",
			input:   "https://maps.google.com/@1.5,2.5,10z?q=3.5,4.5",
			wantLat: 1.5,
			wantLng: 2.5,
			wantOK:  true,
		},
		{
			name:   "no recognizable pattern",
			input:  "https://maps.google.com/place/some-street",
			wantOK: false,
		},
		{
			name:   "empty input",
			input:  "",
			wantOK: false,
		},
		{
			name:   "bare q without separator is not a query fragment",
			input:  "https://example.com/q=12.9,77.5",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lat, lng, ok := geo.FromMapURL(tc.input)

			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.InDelta(t, tc.wantLat, lat, 1e-9)
				assert.InDelta(t, tc.wantLng, lng, 1e-9)
			}
		})
	}
}
