package compose

import (
	"strings"
	"testing"
)

func argsContain(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestResolveProfileKnownTiers(t *testing.T) {
	draft := ResolveProfile("draft")
	if draft.Preset != "veryfast" || draft.CRF != 28 || draft.AudioBitrate != "128k" || draft.BaseWidth != 720 {
		t.Errorf("unexpected draft profile: %+v", draft)
	}

	high := ResolveProfile("high")
	if high.Preset != "slow" || high.CRF != 18 || high.AudioBitrate != "192k" || high.BaseWidth != 1080 {
		t.Errorf("unexpected high profile: %+v", high)
	}
}

func TestResolveProfileFallback(t *testing.T) {
	for _, tier := range []string{"", "ultra", "HIGH-ish", "medium"} {
		p := ResolveProfile(tier)
		if p.Name != "draft" {
			t.Errorf("tier %q resolved to %s, want draft", tier, p.Name)
		}
	}

	// Case and whitespace are not the caller's problem
	if p := ResolveProfile("  HIGH "); p.Name != "high" {
		t.Errorf("tier '  HIGH ' resolved to %s, want high", p.Name)
	}
}

func TestResolvePolicy(t *testing.T) {
	if p := ResolvePolicy("shortest-of-both"); p != PolicyShortest {
		t.Errorf("got %s, want %s", p, PolicyShortest)
	}
	for _, s := range []string{"", "video-length", "garbage"} {
		if p := ResolvePolicy(s); p != PolicyVideoLength {
			t.Errorf("policy %q resolved to %s, want %s", s, p, PolicyVideoLength)
		}
	}
}

func TestAssembleCommandBaseline(t *testing.T) {
	cfg := DefaultConfig()
	profile := ResolveProfile("high")
	graph, err := BuildFilterGraph(cfg, profile, "", "")
	if err != nil {
		t.Fatalf("BuildFilterGraph: %v", err)
	}

	cmd := AssembleCommand(cfg, profile, graph, PolicyVideoLength, "in.mp4", "in.aac", "out.mp4")

	if cmd.OutputPath != "out.mp4" {
		t.Errorf("output path %q, want out.mp4", cmd.OutputPath)
	}
	if cmd.Args[len(cmd.Args)-1] != "out.mp4" {
		t.Errorf("last arg %q, want output path", cmd.Args[len(cmd.Args)-1])
	}
	if got := argAfter(cmd.Args, "-filter_complex"); got != graph.Description() {
		t.Errorf("filter_complex arg %q, want %q", got, graph.Description())
	}
	if got := argAfter(cmd.Args, "-preset"); got != "slow" {
		t.Errorf("preset %q, want slow", got)
	}
	if got := argAfter(cmd.Args, "-crf"); got != "18" {
		t.Errorf("crf %q, want 18", got)
	}
	if got := argAfter(cmd.Args, "-b:a"); got != "192k" {
		t.Errorf("audio bitrate %q, want 192k", got)
	}
	if got := argAfter(cmd.Args, "-threads"); got != "2" {
		t.Errorf("threads %q, want 2", got)
	}
	if argsContain(cmd.Args, "-shortest") {
		t.Error("video-length policy must not emit -shortest")
	}

	// The graph rides as one opaque argument, never split
	for _, a := range cmd.Args {
		if strings.Contains(a, ";") && a != graph.Description() {
			t.Errorf("graph fragment leaked into separate arg: %q", a)
		}
	}
}

func TestAssembleCommandShortestPolicy(t *testing.T) {
	cfg := DefaultConfig()
	profile := ResolveProfile("draft")
	graph, err := BuildFilterGraph(cfg, profile, "", "")
	if err != nil {
		t.Fatalf("BuildFilterGraph: %v", err)
	}

	cmd := AssembleCommand(cfg, profile, graph, PolicyShortest, "in.mp4", "in.aac", "out.mp4")
	if !argsContain(cmd.Args, "-shortest") {
		t.Error("shortest-of-both policy must emit -shortest")
	}
}
