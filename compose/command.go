package compose

import (
	"strconv"
	"strings"
)

// QualityProfile bundles the encode parameters selected by a tier.
type QualityProfile struct {
	Name         string
	Preset       string
	CRF          int
	AudioBitrate string
	BaseWidth    int
}

// DurationPolicy controls how mismatched stream lengths are resolved.
type DurationPolicy string

const (
	// PolicyVideoLength preserves the full video length; audio may end
	// early or have been tempo-extended to match.
	PolicyVideoLength DurationPolicy = "video-length"
	// PolicyShortest trims the output to the shorter of the two streams.
	PolicyShortest DurationPolicy = "shortest-of-both"
)

var qualityProfiles = map[string]QualityProfile{
	"draft": {Name: "draft", Preset: "veryfast", CRF: 28, AudioBitrate: "128k", BaseWidth: 720},
	"high":  {Name: "high", Preset: "slow", CRF: 18, AudioBitrate: "192k", BaseWidth: 1080},
}

// ResolveProfile maps a tier string to its profile. Unknown or empty tiers
// fall back to draft; tier selection never fails a request.
func ResolveProfile(tier string) QualityProfile {
	if p, ok := qualityProfiles[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return p
	}
	return qualityProfiles["draft"]
}

// ResolvePolicy maps a policy string to a DurationPolicy, defaulting to
// preserving the video length on empty or unrecognized input.
func ResolvePolicy(s string) DurationPolicy {
	if DurationPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyShortest {
		return PolicyShortest
	}
	return PolicyVideoLength
}

// AssembleCommand merges the profile, filter graph and duration policy into
// one encode invocation: input bindings, the graph as a single opaque
// argument, stream maps for the final video and chosen audio labels, and
// codec/quality/bitrate arguments. The result is a fixed argument vector;
// it is never rendered through a shell.
func AssembleCommand(cfg Config, profile QualityProfile, graph *FilterGraph, policy DurationPolicy, videoPath, audioPath, outputPath string) *EncodeCommand {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", graph.Description(),
		"-map", graph.VideoMap(),
		"-map", graph.AudioMap(),
		"-c:v", "libx264",
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", profile.AudioBitrate,
	}
	if policy == PolicyShortest {
		args = append(args, "-shortest")
	}
	args = append(args,
		"-movflags", "+faststart",
		"-threads", strconv.Itoa(cfg.EncodeThreads),
		outputPath,
	)
	return &EncodeCommand{Args: args, OutputPath: outputPath}
}
