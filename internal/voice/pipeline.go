package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trendbasket/storefront/internal/intent"
	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

// State tracks where the pipeline is in its Idle -> Listening -> settled
// cycle. Recognition outcomes always return the pipeline to Idle.
type State int

const (
	StateIdle State = iota
	StateListening
)

// NavTarget names where a navigation command wants the UI to go.
type NavTarget string

const (
	NavProducts NavTarget = "products"
)

type classifier interface {
	Predict(ctx context.Context, text string) (*intent.Result, error)
}

type categorySetter interface {
	SetCategory(value string)
}

// Pipeline drives one voice interaction at a time. Two interpreter
// variants share it: ListenAndNavigate matches a local phrase table and
// signals navigation; ListenAndFilter asks the intent service for a
// category and applies it to the category store.
type Pipeline struct {
	mu    sync.Mutex
	state State

	recognizer Recognizer
	synth      Synthesizer
	classifier classifier
	categories categorySetter
	navigate   func(NavTarget)
	username   func() string

	cfg   config.SpeechConfig
	logg  *logger.Logger
	after func(time.Duration) <-chan time.Time
}

// PipelineParams bundles the dependencies required to build a pipeline.
// Navigate may be nil when the hosting page has nowhere to go; Username
// supplies the name spoken in confirmations and defaults to "there".
// After overrides the delay clock, for tests.
type PipelineParams struct {
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Classifier  classifier
	Categories  categorySetter
	Navigate    func(NavTarget)
	Username    func() string
	Speech      config.SpeechConfig
	Logger      *logger.Logger
	After       func(time.Duration) <-chan time.Time
}

func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Recognizer == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if params.Synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	after := params.After
	if after == nil {
		after = time.After
	}
	username := params.Username
	if username == nil {
		username = func() string { return "" }
	}
	return &Pipeline{
		recognizer: params.Recognizer,
		synth:      params.Synthesizer,
		classifier: params.Classifier,
		categories: params.Categories,
		navigate:   params.Navigate,
		username:   username,
		cfg:        params.Speech,
		logg:       params.Logger,
		after:      after,
	}, nil
}

// State reports the pipeline's current phase.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Welcome speaks the assistant's greeting for the products page.
func (p *Pipeline) Welcome(ctx context.Context) {
	name := p.displayName()
	message := fmt.Sprintf("Hey %s! Here you can find all the products we have in store for you. "+
		"Ask me which type of products you want to see. You can ask me like show me jeans, saree, "+
		"tshirt, pant, shirt, kurta, kurti. I can assist you find the best product for you.", name)
	p.speak(ctx, message)
}

// ListenAndFilter runs the intent-classification variant: capture one
// utterance, classify it remotely, and on a non-empty label update the
// category store after the configured processing pause, confirming out
// loud. Any classifier failure leaves the category untouched and speaks
// the apology; no retry.
func (p *Pipeline) ListenAndFilter(ctx context.Context) error {
	transcript, err := p.listen(ctx)
	if err != nil {
		return err
	}
	if p.classifier == nil || p.categories == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "intent variant is not wired on this page")
	}

	ctx = p.logg.WithField(ctx, "transcript", transcript)
	result, err := p.classifier.Predict(ctx, transcript)
	if err != nil {
		p.logg.Warn(ctx, "no intent for transcript")
		p.speakFallback(ctx, err)
		return err
	}

	ctx = p.logg.WithIntent(ctx, result.Intent)
	name := p.displayName()
	p.speak(ctx, fmt.Sprintf("Hey %s, wait a minute, I am searching the best %s products for you "+
		"while filtering based on your command", name, result.Intent))

	// The pause is a UX affordance carried over from the storefront; the
	// category flips only after it elapses.
	select {
	case <-p.after(p.cfg.ProcessingDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	p.categories.SetCategory(result.Intent)
	p.logg.Info(ctx, "category filter applied from voice intent")
	p.speak(ctx, fmt.Sprintf("Here are the best %s products for you, %s!", result.Intent, name))
	return nil
}

// ListenAndNavigate runs the navigation variant: capture one utterance and
// match it against the local phrase table.
func (p *Pipeline) ListenAndNavigate(ctx context.Context) error {
	transcript, err := p.listen(ctx)
	if err != nil {
		return err
	}

	ctx = p.logg.WithField(ctx, "transcript", transcript)
	name := p.displayName()

	switch Interpret(transcript) {
	case CommandShowProducts:
		p.speak(ctx, fmt.Sprintf("Showing you all the products, %s! Please wait for a while while I prepare everything for you.", name))
		p.speak(ctx, "Perfect! Now navigating you to the products page where you'll find all our amazing products.")
		select {
		case <-p.after(p.cfg.NavigationDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if p.navigate != nil {
			p.navigate(NavProducts)
		}
		p.logg.Info(ctx, "voice navigation to products")
	case CommandDeals:
		p.speak(ctx, "I'll show you the best deals available today! Scroll down to see our amazing offers.")
	case CommandHelp:
		p.speak(ctx, fmt.Sprintf("I can help you browse products, find deals, navigate through the website, and assist with your shopping needs. Just ask me what you're looking for, %s!", name))
	case CommandHome:
		p.speak(ctx, fmt.Sprintf("You're already on the home page, %s! How can I help you today?", name))
	case CommandContact:
		p.speak(ctx, "I can help you with general questions, but for specific support, please visit our contact page. You can find it in the navigation menu.")
	default:
		p.speak(ctx, fmt.Sprintf("I heard you say: %s. I can help you navigate to products, find deals, or answer questions. What would you like to do, %s?", transcript, name))
	}
	return nil
}

// listen cancels any in-flight playback, runs a single recognition session
// and returns the lower-cased transcript. The pipeline is back in Idle by
// the time listen returns, whatever the outcome.
func (p *Pipeline) listen(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state == StateListening {
		p.mu.Unlock()
		return "", pkgerrors.New(pkgerrors.CodeRecognition, "already listening")
	}
	p.state = StateListening
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
	}()

	// The assistant must not talk over the user.
	p.synth.Cancel()

	ctx = p.logg.WithSessionID(ctx, uuid.NewString())
	p.logg.Debug(ctx, "listening for one utterance")

	transcript, err := p.recognizer.Listen(ctx)
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeRecognition, err, "speech recognition failed")
		p.logg.Warn(ctx, "recognition failed")
		p.speakFallback(ctx, wrapped)
		return "", wrapped
	}

	transcript = strings.ToLower(strings.TrimSpace(transcript))
	if transcript == "" {
		wrapped := pkgerrors.New(pkgerrors.CodeRecognition, "empty transcript")
		p.speakFallback(ctx, wrapped)
		return "", wrapped
	}
	return transcript, nil
}

// speakFallback voices the spoken message registered for the error's code,
// personalized the way the storefront phrases its apology.
func (p *Pipeline) speakFallback(ctx context.Context, err error) {
	code := pkgerrors.CodeOf(err)
	if code == pkgerrors.CodeEmptyIntent || code == pkgerrors.CodeRecognition {
		p.speak(ctx, fmt.Sprintf("Sorry %s, I didn't catch that. Please try again.", p.displayName()))
		return
	}
	p.speak(ctx, pkgerrors.MetadataFor(code).Spoken)
}

// speak is fire-and-forget from the pipeline's point of view: playback
// errors are logged, never propagated.
func (p *Pipeline) speak(ctx context.Context, text string) {
	if err := p.synth.Speak(ctx, text); err != nil {
		p.logg.Warn(ctx, "speech playback failed")
	}
}

func (p *Pipeline) displayName() string {
	if name := strings.TrimSpace(p.username()); name != "" {
		return name
	}
	return "there"
}
