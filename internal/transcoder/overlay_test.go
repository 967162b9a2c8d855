package transcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

func TestBuildOverlayFilter(t *testing.T) {
	tests := []struct {
		name     string
		res      models.Resolution
		hdr      bool
		expected string
	}{
		{
			name:     "sdr 360p",
			res:      models.Resolution360p,
			hdr:      false,
			expected: "scale=640:360,drawtext=text=●:fontcolor=white:fontsize=36:x=604:y=324",
		},
		{
			name:     "hdr 360p",
			res:      models.Resolution360p,
			hdr:      true,
			expected: "scale=640:360,drawtext=text=●:fontcolor=green:fontsize=50:x=590:y=0",
		},
		{
			name:     "sdr 1080p",
			res:      models.Resolution1080p,
			hdr:      false,
			expected: "scale=1920:1080,drawtext=text=●:fontcolor=white:fontsize=108:x=1812:y=972",
		},
		{
			name:     "hdr 1080p",
			res:      models.Resolution1080p,
			hdr:      true,
			expected: "scale=1920:1080,drawtext=text=●:fontcolor=green:fontsize=152:x=1768:y=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := models.NewOverlayStyle(tt.res, tt.hdr)
			filter := buildOverlayFilter(tt.res, style, config.OverlayConfig{})
			assert.Equal(t, tt.expected, filter)
		})
	}
}

func TestBuildOverlayFilterOptions(t *testing.T) {
	style := models.NewOverlayStyle(models.Resolution720p, false)

	filter := buildOverlayFilter(models.Resolution720p, style, config.OverlayConfig{
		Glyph:    "◯",
		FontFile: "/usr/share/fonts/DejaVuSans.ttf",
	})
	assert.Contains(t, filter, "text=◯")
	assert.Contains(t, filter, ":fontfile='/usr/share/fonts/DejaVuSans.ttf'")
}

func TestEscapeFilterValue(t *testing.T) {
	assert.Equal(t, "●", escapeFilterValue("●"))
	assert.Equal(t, `a\:b\,c`, escapeFilterValue("a:b,c"))
	assert.Equal(t, `it\'s`, escapeFilterValue("it's"))
}
