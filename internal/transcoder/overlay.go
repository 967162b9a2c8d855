package transcoder

import (
	"fmt"
	"strings"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

// defaultGlyph is drawn when no glyph is configured
const defaultGlyph = "●"

// buildOverlayFilter builds the -vf chain: scale to the target size, then
// draw the marker glyph with its bounding box centered on the style's point
func buildOverlayFilter(res models.Resolution, style models.OverlayStyle, opts config.OverlayConfig) string {
	glyph := opts.Glyph
	if glyph == "" {
		glyph = defaultGlyph
	}

	filter := fmt.Sprintf(
		"scale=%d:%d,drawtext=text=%s:fontcolor=%s:fontsize=%d:x=%d:y=%d",
		res.Width,
		res.Height,
		escapeFilterValue(glyph),
		style.Color,
		style.Diameter(),
		style.Left(),
		style.Top(),
	)

	if opts.FontFile != "" {
		filter += fmt.Sprintf(":fontfile='%s'", strings.ReplaceAll(opts.FontFile, "'", `'\''`))
	}

	return filter
}

// escapeFilterValue escapes characters that delimit filtergraph options
func escapeFilterValue(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`,`, `\,`,
		`'`, `\'`,
		`;`, `\;`,
	)
	return replacer.Replace(s)
}
