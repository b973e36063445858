// Package voice implements the assistant pipeline: capture one utterance,
// interpret it (locally or via the intent service), mutate UI state and
// speak a confirmation. Speech capabilities are injected so the pipeline
// runs without a real microphone or speaker.
package voice

import "context"

// Recognizer captures a single utterance. Implementations run one
// non-continuous session in a fixed locale with no interim results and
// return the top transcript hypothesis. Starting a new session implicitly
// cancels any prior one; concurrent sessions are not supported.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Synthesizer plays spoken responses. Speak returns once playback settles;
// Cancel interrupts whatever is currently playing. Overlap is prevented
// only by an explicit Cancel before new playback, never by queueing.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}
