package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StyledSuffix tags the rewritten subtitle file so input and output stay
// independent lifecycle entries.
const StyledSuffix = ".styled.ass"

// RewriteSubtitleFile reads a subtitle file, rewrites its style block for
// vertical burn-in and writes the result next to the input with StyledSuffix.
// Returns the generated path.
func RewriteSubtitleFile(cfg Config, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitles: %w", err)
	}

	rewritten, err := RewriteSubtitleStyles(cfg, string(raw))
	if err != nil {
		return "", err
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + StyledSuffix
	if err := os.WriteFile(out, []byte(rewritten), 0644); err != nil {
		return "", fmt.Errorf("write rewritten subtitles: %w", err)
	}
	return out, nil
}

// RewriteSubtitleStyles unwraps an optional JSON envelope and rewrites every
// Style declaration in the [V4+ Styles] block: font size grows by a fixed
// delta up to a cap, the vertical margin is forced to the configured value
// and underline is switched off. Horizontal margins stay untouched.
//
// Returns an error when no Style line could be parsed at all; burning in
// unmodified or corrupt subtitles is worse than failing the request.
func RewriteSubtitleStyles(cfg Config, raw string) (string, error) {
	text := unwrapSubtitlePayload(raw)

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		inStyles     bool
		formatFields []string
		rewritten    int
	)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(trimmed)
			inStyles = section == "[v4+ styles]" || section == "[v4 styles]"
			formatFields = nil
			continue
		}
		if !inStyles {
			continue
		}

		if value, ok := strings.CutPrefix(trimmed, "Format:"); ok {
			formatFields = splitFields(value)
			continue
		}
		if value, ok := strings.CutPrefix(trimmed, "Style:"); ok && formatFields != nil {
			parts := strings.SplitN(value, ",", len(formatFields))
			if len(parts) != len(formatFields) {
				continue
			}
			for j, field := range formatFields {
				switch strings.ToLower(field) {
				case "fontsize":
					size, err := strconv.ParseFloat(strings.TrimSpace(parts[j]), 64)
					if err != nil {
						continue
					}
					size += cfg.FontSizeDelta
					if size > cfg.FontSizeMax {
						size = cfg.FontSizeMax
					}
					parts[j] = strconv.FormatFloat(size, 'f', -1, 64)
				case "marginv":
					parts[j] = strconv.Itoa(cfg.SubtitleMargin)
				case "underline":
					parts[j] = "0"
				}
			}
			lines[i] = "Style: " + strings.Join(parts, ",")
			rewritten++
		}
	}

	if rewritten == 0 {
		return "", fmt.Errorf("subtitle structure not recognized: no parseable Style declarations")
	}
	return strings.Join(lines, "\n"), nil
}

// unwrapSubtitlePayload peels the JSON wrapper some upstream generators put
// around the subtitle text: either an object, or an array whose first element
// is an object, carrying the payload under "ass". Anything that is not that
// exact shape (including malformed JSON) is treated verbatim.
func unwrapSubtitlePayload(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return raw
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return raw
	}

	switch v := parsed.(type) {
	case map[string]any:
		if s, ok := v["ass"].(string); ok {
			return s
		}
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				if s, ok := m["ass"].(string); ok {
					return s
				}
			}
		}
	}
	return raw
}

func splitFields(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
