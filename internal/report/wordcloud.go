package report

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/psykhi/wordclouds"
)

// cloud colors, dark-on-light like the bar charts.
var cloudColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// WordCloud renders a word cloud from a token frequency map. It needs a TTF
// font; when none is configured or the file is missing, the cloud is skipped
// with a warning and no error, the same policy as a missing column.
func (r *Renderer) WordCloud(counts map[string]int, filename string) error {
	path := filepath.Join(r.dir, filename)

	if r.style.FontFile == "" {
		r.logger.Warn().Str("path", path).Msg("no word-cloud font configured; skipping")
		return nil
	}
	if _, err := os.Stat(r.style.FontFile); err != nil {
		r.logger.Warn().Str("font", r.style.FontFile).Str("path", path).
			Msg("word-cloud font not found; skipping")
		return nil
	}
	if len(counts) == 0 {
		r.logger.Warn().Str("path", path).Msg("no tokens to draw; skipping word cloud")
		return nil
	}

	w := wordclouds.NewWordcloud(counts,
		wordclouds.FontFile(r.style.FontFile),
		wordclouds.Width(r.style.WordCloudWidth),
		wordclouds.Height(r.style.WordCloudHeight),
		wordclouds.FontMaxSize(120),
		wordclouds.FontMinSize(12),
		wordclouds.Colors(cloudColors),
		wordclouds.BackgroundColor(color.White),
	)
	img := w.Draw()

	f, err := os.Create(path)
	if err != nil {
		return r.renderErr(path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return r.renderErr(path, err)
	}
	if err := f.Close(); err != nil {
		return r.renderErr(path, err)
	}

	r.logger.Info().Str("path", path).Int("terms", len(counts)).Msg("word cloud rendered")
	return nil
}
