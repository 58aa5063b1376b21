package compose

import "context"

// EncodeCommand is a fully resolved invocation of the external engine. Args
// is a discrete argument vector, never a shell string; all user-controlled
// text inside it has already been escaped for the filter mini-language.
type EncodeCommand struct {
	Args       []string
	OutputPath string
}

// Engine is the narrow capability surface the pipeline needs from the
// external encoder. Tests substitute a deterministic fake.
type Engine interface {
	// ProbeDuration returns the container duration of the media at path in
	// seconds. ok is false when the duration is unavailable for any reason;
	// duration is an optimization input, not a correctness requirement.
	ProbeDuration(ctx context.Context, path string) (seconds float64, ok bool)

	// Encode runs the command and returns the engine's diagnostic output
	// alongside any error. ctx bounds the invocation.
	Encode(ctx context.Context, cmd *EncodeCommand) (diagnostics string, err error)
}
