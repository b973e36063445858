package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/trendbasket/storefront/internal/category"
	"github.com/trendbasket/storefront/internal/intent"
	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

type stubRecognizer struct {
	transcript string
	err        error
}

func (s *stubRecognizer) Listen(ctx context.Context) (string, error) {
	return s.transcript, s.err
}

type recordingSynth struct {
	spoken    []string
	cancelled int
}

func (r *recordingSynth) Speak(ctx context.Context, text string) error {
	r.spoken = append(r.spoken, text)
	return nil
}

func (r *recordingSynth) Cancel() { r.cancelled++ }

type stubClassifier struct {
	result *intent.Result
	err    error
	called bool
}

func (s *stubClassifier) Predict(ctx context.Context, text string) (*intent.Result, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// immediate makes the pipeline's delays elapse instantly so tests stay fast.
func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func buildPipeline(t *testing.T, params PipelineParams) *Pipeline {
	t.Helper()
	if params.Logger == nil {
		params.Logger = logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	}
	if params.After == nil {
		params.After = immediate
	}
	pipe, err := NewPipeline(params)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return pipe
}

func TestIntentVariantAppliesCategoryAfterDelay(t *testing.T) {
	synth := &recordingSynth{}
	cats := category.NewStore()
	var delays []time.Duration
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "Show Me Jeans"},
		Synthesizer: synth,
		Classifier:  &stubClassifier{result: &intent.Result{Intent: "jeans"}},
		Categories:  cats,
		Username:    func() string { return "asha" },
		Speech:      config.SpeechConfig{ProcessingDelay: 3 * time.Second},
		After: func(d time.Duration) <-chan time.Time {
			delays = append(delays, d)
			return immediate(d)
		},
	})

	if err := pipe.ListenAndFilter(context.Background()); err != nil {
		t.Fatalf("listen and filter: %v", err)
	}

	if cats.Selected() != "jeans" {
		t.Fatalf("expected category jeans, got %q", cats.Selected())
	}
	if len(delays) != 1 || delays[0] != 3*time.Second {
		t.Fatalf("expected one 3s processing pause, got %v", delays)
	}
	if len(synth.spoken) != 2 {
		t.Fatalf("expected searching + confirmation utterances, got %v", synth.spoken)
	}
	if !strings.Contains(synth.spoken[1], "jeans") || !strings.Contains(synth.spoken[1], "asha") {
		t.Fatalf("confirmation should name the category and user, got %q", synth.spoken[1])
	}
	if pipe.State() != StateIdle {
		t.Fatalf("expected pipeline back in idle")
	}
}

func TestIntentVariantClassifierFailureLeavesCategoryUntouched(t *testing.T) {
	synth := &recordingSynth{}
	cats := category.NewStore()
	cats.SetCategory("kurta")
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "show me jeans"},
		Synthesizer: synth,
		Classifier:  &stubClassifier{err: pkgerrors.New(pkgerrors.CodeEmptyIntent, "classifier returned no label")},
		Categories:  cats,
		Username:    func() string { return "asha" },
	})

	if err := pipe.ListenAndFilter(context.Background()); err == nil {
		t.Fatalf("expected classifier error to propagate")
	}

	if cats.Selected() != "kurta" {
		t.Fatalf("category must be unchanged on classifier failure, got %q", cats.Selected())
	}
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "didn't catch that") {
		t.Fatalf("expected spoken apology, got %v", synth.spoken)
	}
}

func TestIntentVariantTimeoutSpeaksSameApology(t *testing.T) {
	synth := &recordingSynth{}
	cats := category.NewStore()
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "show me jeans"},
		Synthesizer: synth,
		Classifier:  &stubClassifier{err: pkgerrors.Wrap(pkgerrors.CodeEmptyIntent, errors.New("context deadline exceeded"), "predict intent")},
		Categories:  cats,
	})

	_ = pipe.ListenAndFilter(context.Background())

	if cats.Selected() != "" {
		t.Fatalf("category must stay empty, got %q", cats.Selected())
	}
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "didn't catch that") {
		t.Fatalf("timeout and empty label must sound identical, got %v", synth.spoken)
	}
}

func TestListeningCancelsPlaybackFirst(t *testing.T) {
	synth := &recordingSynth{}
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "deals"},
		Synthesizer: synth,
	})

	if err := pipe.ListenAndNavigate(context.Background()); err != nil {
		t.Fatalf("listen and navigate: %v", err)
	}
	if synth.cancelled != 1 {
		t.Fatalf("expected in-flight playback cancelled before listening, got %d", synth.cancelled)
	}
}

func TestRecognitionErrorSpeaksFallbackAndReturnsToIdle(t *testing.T) {
	synth := &recordingSynth{}
	classifier := &stubClassifier{result: &intent.Result{Intent: "jeans"}}
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{err: errors.New("not-allowed: microphone blocked")},
		Synthesizer: synth,
		Classifier:  classifier,
		Categories:  category.NewStore(),
	})

	err := pipe.ListenAndFilter(context.Background())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeRecognition {
		t.Fatalf("expected recognition error, got %v", err)
	}
	if classifier.called {
		t.Fatalf("classifier must not run when recognition fails")
	}
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "didn't catch that") {
		t.Fatalf("expected spoken fallback, got %v", synth.spoken)
	}
	if pipe.State() != StateIdle {
		t.Fatalf("expected idle after recognition error")
	}
}

func TestNavigationShowProductsSpeaksTwiceThenNavigates(t *testing.T) {
	synth := &recordingSynth{}
	var target NavTarget
	var delays []time.Duration
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "take me to products"},
		Synthesizer: synth,
		Navigate:    func(t NavTarget) { target = t },
		Username:    func() string { return "asha" },
		Speech:      config.SpeechConfig{NavigationDelay: 5 * time.Second},
		After: func(d time.Duration) <-chan time.Time {
			delays = append(delays, d)
			return immediate(d)
		},
	})

	if err := pipe.ListenAndNavigate(context.Background()); err != nil {
		t.Fatalf("listen and navigate: %v", err)
	}

	if len(synth.spoken) != 2 {
		t.Fatalf("expected two chained utterances, got %v", synth.spoken)
	}
	if target != NavProducts {
		t.Fatalf("expected navigation to products, got %q", target)
	}
	if len(delays) != 1 || delays[0] != 5*time.Second {
		t.Fatalf("expected the configured navigation pause, got %v", delays)
	}
}

func TestNavigationUnrecognizedEchoesTranscript(t *testing.T) {
	synth := &recordingSynth{}
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "Sing Me A Song"},
		Synthesizer: synth,
	})

	if err := pipe.ListenAndNavigate(context.Background()); err != nil {
		t.Fatalf("listen and navigate: %v", err)
	}
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "sing me a song") {
		t.Fatalf("expected echo of the lower-cased transcript, got %v", synth.spoken)
	}
}

func TestWelcomeNamesTheUser(t *testing.T) {
	synth := &recordingSynth{}
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{},
		Synthesizer: synth,
		Username:    func() string { return "asha" },
	})

	pipe.Welcome(context.Background())
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "Hey asha!") {
		t.Fatalf("expected personalized welcome, got %v", synth.spoken)
	}
}

func TestAnonymousUserFallsBackToThere(t *testing.T) {
	synth := &recordingSynth{}
	pipe := buildPipeline(t, PipelineParams{
		Recognizer:  &stubRecognizer{transcript: "help"},
		Synthesizer: synth,
	})

	_ = pipe.ListenAndNavigate(context.Background())
	if len(synth.spoken) != 1 || !strings.Contains(synth.spoken[0], "there!") {
		t.Fatalf("expected the anonymous fallback name, got %v", synth.spoken)
	}
}
