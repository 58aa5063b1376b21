package compose

// TempoPlan is the audio-speed adjustment computed for a request. An empty
// plan passes the audio through unchanged.
type TempoPlan struct {
	// Per-stage factors, applied in order. Each lies within the engine's
	// valid tempo range; their product equals audioDur/videoDur.
	Stages []float64
}

// Adjusted reports whether the plan changes the audio at all.
func (p TempoPlan) Adjusted() bool { return len(p.Stages) > 0 }

// Factor returns the cumulative tempo factor of the plan (1.0 when empty).
func (p TempoPlan) Factor() float64 {
	f := 1.0
	for _, s := range p.Stages {
		f *= s
	}
	return f
}

// ReconcileTempo decides how to slow the audio down so it covers the video.
// Either duration being unknown, or the audio already covering the video,
// yields an empty plan.
//
// A single engine tempo stage is only valid down to the configured floor
// (0.5). Smaller factors are decomposed into a chain of floor-valued stages
// followed by one remainder stage in [floor, 1.0); the remainder strictly
// approaches 1.0 with each floor stage consumed, so the loop terminates. A
// remainder of exactly 1.0 emits no stage.
func ReconcileTempo(cfg Config, videoDur float64, videoOK bool, audioDur float64, audioOK bool) TempoPlan {
	if !videoOK || !audioOK {
		return TempoPlan{}
	}
	if videoDur <= 0 || audioDur <= 0 || audioDur >= videoDur {
		return TempoPlan{}
	}

	factor := audioDur / videoDur

	var stages []float64
	remaining := factor
	for remaining < cfg.TempoStageFloor {
		stages = append(stages, cfg.TempoStageFloor)
		remaining /= cfg.TempoStageFloor
	}
	if remaining != 1.0 {
		stages = append(stages, remaining)
	}
	return TempoPlan{Stages: stages}
}
