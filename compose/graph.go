package compose

import (
	"fmt"
	"strings"
)

// FilterNode is one transform step in the graph: a filter description wired
// from an input label to a named output label. Nodes form a linear chain;
// each node's output label is the next node's input.
type FilterNode struct {
	In   string
	Desc string
	Out  string
}

// FilterGraph is the ordered chain of visual (and synthesized audio)
// transforms for one request, plus the labels the output streams map to.
type FilterGraph struct {
	Nodes []FilterNode

	videoOut   string
	audioLabel string
	audioSynth bool
	labels     map[string]bool
}

// rawAudioLabel addresses the untouched audio stream of the second input.
const rawAudioLabel = "1:a"

func newFilterGraph() *FilterGraph {
	return &FilterGraph{
		audioLabel: rawAudioLabel,
		labels:     map[string]bool{},
	}
}

// add appends a node and enforces per-request label uniqueness; an aliased
// label would silently rewire the chain.
func (g *FilterGraph) add(in, desc, out string) error {
	if g.labels[out] {
		return fmt.Errorf("duplicate filter label %q", out)
	}
	g.labels[out] = true
	g.Nodes = append(g.Nodes, FilterNode{In: in, Desc: desc, Out: out})
	return nil
}

// Description renders the graph as one opaque engine argument.
func (g *FilterGraph) Description() string {
	parts := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		parts = append(parts, "["+n.In+"]"+n.Desc+"["+n.Out+"]")
	}
	return strings.Join(parts, ";")
}

// VideoMap returns the stream-mapping directive for the final video label.
func (g *FilterGraph) VideoMap() string { return "[" + g.videoOut + "]" }

// AudioMap returns the stream-mapping directive for the chosen audio: the
// raw input stream, or the synthesized tempo-adjusted label.
func (g *FilterGraph) AudioMap() string {
	if g.audioSynth {
		return "[" + g.audioLabel + "]"
	}
	return g.audioLabel
}

// ApplyTempo appends the plan's adjustment stages as chained audio nodes,
// each consuming the previous stage's label, and designates the final
// stage's output as the audio label for stream mapping.
func (g *FilterGraph) ApplyTempo(plan TempoPlan) error {
	for i, factor := range plan.Stages {
		out := fmt.Sprintf("atmp%d", i)
		if err := g.add(g.audioLabel, fmt.Sprintf("atempo=%.6f", factor), out); err != nil {
			return err
		}
		g.audioLabel = out
		g.audioSynth = true
	}
	return nil
}

// BuildFilterGraph assembles the node chain in its fixed order: blurred
// background fill, portrait crop, then optional subtitle and caption
// burn-in. Absent inputs skip their node entirely rather than inserting a
// no-op, so the final label reflects only the transforms actually requested.
func BuildFilterGraph(cfg Config, profile QualityProfile, subtitlePath, caption string) (*FilterGraph, error) {
	g := newFilterGraph()

	width := profile.BaseWidth
	height := width * 16 / 9 // portrait: height from the target width

	// Scale to the base width (engine computes an even height) and soften
	// for background fill.
	if err := g.add("0:v", fmt.Sprintf("scale=%d:-2,boxblur=%d", width, cfg.BlurRadius), "bg"); err != nil {
		return nil, err
	}

	// Center-crop the scaled frame to the portrait aspect.
	crop := fmt.Sprintf("crop=%d:%d:(in_w-%d)/2:(in_h-%d)/2", width, height, width, height)
	if err := g.add("bg", crop, "base"); err != nil {
		return nil, err
	}
	g.videoOut = "base"

	if subtitlePath != "" {
		desc := "ass='" + escapeFilterText(subtitlePath) + "'"
		if err := g.add(g.videoOut, desc, "subbed"); err != nil {
			return nil, err
		}
		g.videoOut = "subbed"
	}

	if caption != "" {
		desc := fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=h-%d:box=1:boxcolor=black@0.5:boxborderw=16",
			escapeFilterText(caption), cfg.CaptionFontSize, cfg.CaptionBottomOffset,
		)
		if err := g.add(g.videoOut, desc, "captioned"); err != nil {
			return nil, err
		}
		g.videoOut = "captioned"
	}

	return g, nil
}

// filterEscaper covers the delimiter characters of the engine's filter
// mini-language. Unescaped, any of these would terminate or corrupt the
// graph description argument.
var filterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	"\n", `\n`,
)

func escapeFilterText(s string) string {
	return filterEscaper.Replace(s)
}
