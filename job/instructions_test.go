package job

import (
	"testing"

	"vermux/models"
)

func TestInstructionsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	instr := Instructions{
		Dir:           dir,
		Token:         "abc123xyz789",
		VideoFile:     "clip.mp4",
		AudioFile:     "voice.aac",
		SubtitleFile:  "subs.ass",
		Caption:       "Breaking update",
		Quality:       "high",
		DurationMatch: "shortest-of-both",
		Job: models.RenderJob{
			CallbackURL: "https://example.com/done",
			SubDir:      "renders/2026",
			Deliveries: []models.DeliveryJob{
				{Type: "s3", AccessKey: "key1"},
				{Type: "directServe"},
			},
		},
	}

	if err := WriteInstructions(dir, instr); err != nil {
		t.Fatalf("WriteInstructions: %v", err)
	}

	got, err := ReadInstructions(dir)
	if err != nil {
		t.Fatalf("ReadInstructions: %v", err)
	}

	if got.Token != instr.Token || got.VideoFile != instr.VideoFile || got.AudioFile != instr.AudioFile {
		t.Errorf("input files mismatch: %+v", got)
	}
	if got.SubtitleFile != instr.SubtitleFile || got.Caption != instr.Caption {
		t.Errorf("optional fields mismatch: %+v", got)
	}
	if got.Quality != "high" || got.DurationMatch != "shortest-of-both" {
		t.Errorf("knobs mismatch: %+v", got)
	}
	if got.Job.CallbackURL != instr.Job.CallbackURL || got.Job.SubDir != instr.Job.SubDir {
		t.Errorf("job envelope mismatch: %+v", got.Job)
	}
	if len(got.Job.Deliveries) != 2 || got.Job.Deliveries[0].Type != "s3" {
		t.Errorf("deliveries mismatch: %+v", got.Job.Deliveries)
	}
}

func TestReadInstructionsMissingFile(t *testing.T) {
	if _, err := ReadInstructions(t.TempDir()); err == nil {
		t.Error("expected error for directory without instructions")
	}
}
