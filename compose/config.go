package compose

import "time"

// Config carries the pipeline constants. It is passed by value into
// NewPipeline so instances with different settings (tests, staging tiers)
// coexist without shared state.
type Config struct {
	FFmpegBin  string
	FFprobeBin string

	// Bound on a single encode invocation; exceeding it is EncodeTimeout.
	EncodeTimeout time.Duration
	// Thread hint forwarded to the engine so concurrent renders share a host.
	EncodeThreads int

	// Subtitle style rewrite constants.
	FontSizeDelta  float64
	FontSizeMax    float64
	SubtitleMargin int // vertical margin forced onto every style

	// Caption burn-in constants.
	CaptionFontSize     int
	CaptionBottomOffset int // distance of the caption baseline from the bottom edge

	// Background blur radius for the fill pass.
	BlurRadius int

	// Valid range floor for a single engine tempo stage.
	TempoStageFloor float64
}

// DefaultConfig returns the production pipeline constants.
func DefaultConfig() Config {
	return Config{
		FFmpegBin:           "ffmpeg",
		FFprobeBin:          "ffprobe",
		EncodeTimeout:       10 * time.Minute,
		EncodeThreads:       2,
		FontSizeDelta:       16,
		FontSizeMax:         84,
		SubtitleMargin:      90,
		CaptionFontSize:     54,
		CaptionBottomOffset: 160,
		BlurRadius:          10,
		TempoStageFloor:     0.5,
	}
}
