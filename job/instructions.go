package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vermux/models"
)

// Instructions describes one queued render: where the uploaded inputs live
// and how to compose and deliver the result.
type Instructions struct {
	Dir           string           `json:"dir"`   // per-request temp directory
	Token         string           `json:"token"` // request token, also the dir basename
	VideoFile     string           `json:"video_file"`
	AudioFile     string           `json:"audio_file"`
	SubtitleFile  string           `json:"subtitle_file,omitempty"`
	Caption       string           `json:"caption,omitempty"`
	Quality       string           `json:"quality,omitempty"`
	DurationMatch string           `json:"duration_match,omitempty"`
	Job           models.RenderJob `json:"job"`
}

const instructionsFile = "instructions.json"

// WriteInstructions writes the instructions to instructions.json in dir.
func WriteInstructions(dir string, instr Instructions) error {
	path := filepath.Join(dir, instructionsFile)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create instructions file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(instr); err != nil {
		return fmt.Errorf("failed to encode instructions: %w", err)
	}
	return nil
}

// ReadInstructions reads instructions from instructions.json in dir.
func ReadInstructions(dir string) (Instructions, error) {
	path := filepath.Join(dir, instructionsFile)
	file, err := os.Open(path)
	if err != nil {
		return Instructions{}, fmt.Errorf("failed to open instructions file: %w", err)
	}
	defer file.Close()

	var instr Instructions
	if err := json.NewDecoder(file).Decode(&instr); err != nil {
		return Instructions{}, fmt.Errorf("failed to decode instructions: %w", err)
	}
	return instr, nil
}
