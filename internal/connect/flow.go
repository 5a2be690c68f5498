// Package connect drives the marketplace store connection wizard:
// form, authorization instructions, then a popup that reports back either
// by posting a message or by being closed.
package connect

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/marketplace"
	"github.com/jordymora1978/dropux-admin/internal/utils"
)

type Step int

const (
	StepForm Step = iota
	StepInstructions
	StepConnecting
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepForm:
		return "form"
	case StepInstructions:
		return "instructions"
	case StepConnecting:
		return "connecting"
	case StepDone:
		return "done"
	}
	return "unknown"
}

var (
	ErrInvalidForm = errors.New("connection form has errors")
	ErrWrongStep   = errors.New("action not available at this step")
)

// Banner messages shown when an attempt fails.
const (
	msgConnectFailed = "No se pudo iniciar la conexión. Intenta de nuevo."
	msgPopupError    = "Error al conectar la tienda"
	msgPopupClosed   = "La ventana se cerró antes de completar la conexión"
)

// Connector starts a connection on the sales backend.
type Connector interface {
	ConnectStore(ctx context.Context, req marketplace.ConnectRequest) (*marketplace.ConnectResponse, error)
}

// Window is an open authorization popup.
type Window interface {
	Closed() bool
	Close()
}

type Opener interface {
	Open(url string) (Window, error)
}

// Message is a cross-window message received from the popup.
type Message struct {
	Origin  string
	Type    string
	Message string
}

// Outcome is published once per finished attempt.
type Outcome struct {
	Connected bool
	Message   string
}

type Options struct {
	AllowedOrigins []string
	// How often the popup is checked for manual closure.
	PollInterval time.Duration
	// OnConnected runs after a successful connection, e.g. to refresh the store list.
	OnConnected func()
}

type Flow struct {
	mu        sync.Mutex
	connector Connector
	opener    Opener
	opts      Options
	allowed   map[string]struct{}

	step        Step
	form        marketplace.ConnectRequest
	fieldErrors map[string]string
	banner      string
	response    *marketplace.ConnectResponse

	window   Window
	attempt  int
	stopPoll context.CancelFunc
	outcomes chan Outcome
}

func New(connector Connector, opener Opener, opts Options) *Flow {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	allowed := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Flow{
		connector: connector,
		opener:    opener,
		opts:      opts,
		allowed:   allowed,
		step:      StepForm,
		outcomes:  make(chan Outcome, 8),
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Banner is the current error banner, empty when there is none.
func (f *Flow) Banner() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

func (f *Flow) DismissBanner() {
	f.mu.Lock()
	f.banner = ""
	f.mu.Unlock()
}

func (f *Flow) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

func (f *Flow) Instructions() *marketplace.ConnectResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.response
}

// Outcomes delivers the result of every finished attempt.
func (f *Flow) Outcomes() <-chan Outcome {
	return f.outcomes
}

// Validate checks the form locally. It returns nil when the form can be sent.
func Validate(form marketplace.ConnectRequest) map[string]string {
	errs := utils.Validate(form)
	if _, ok := marketplace.FindSite(form.SiteID); !ok && form.SiteID != "" {
		if errs == nil {
			errs = map[string]string{}
		}
		errs["site_id"] = "Unknown site"
	}
	return errs
}

// Submit validates the form and asks the backend for an authorization URL.
// Field errors keep the flow on the form without any network call.
func (f *Flow) Submit(ctx context.Context, form marketplace.ConnectRequest) error {
	f.mu.Lock()
	if f.step != StepForm {
		f.mu.Unlock()
		return ErrWrongStep
	}
	f.form = form
	f.fieldErrors = Validate(form)
	if f.fieldErrors != nil {
		f.mu.Unlock()
		return ErrInvalidForm
	}
	f.banner = ""
	f.mu.Unlock()

	res, err := f.connector.ConnectStore(ctx, form)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.banner = msgConnectFailed
		logger.WithModule("connect").Warnf("⚠️ connect-store failed: %v", err)
		return err
	}
	f.response = res
	f.step = StepInstructions
	return nil
}

// Back returns from the instructions to the form.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepInstructions {
		f.step = StepForm
	}
}

// Authorize opens the popup and starts watching it. It may be called again
// while connecting; the popup of the earlier attempt is closed first.
func (f *Flow) Authorize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if (f.step != StepInstructions && f.step != StepConnecting) || f.response == nil {
		return ErrWrongStep
	}

	f.abandonLocked()

	f.attempt++
	w, err := f.opener.Open(f.response.AuthURL)
	if err != nil {
		f.step = StepInstructions
		f.banner = msgConnectFailed
		return err
	}

	f.window = w
	f.banner = ""
	f.step = StepConnecting

	ctx, cancel := context.WithCancel(context.Background())
	f.stopPoll = cancel
	go f.poll(ctx, f.attempt, w)
	return nil
}

func (f *Flow) poll(ctx context.Context, attempt int, w Window) {
	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Closed() {
				f.finish(attempt, Outcome{Message: msgPopupClosed})
				return
			}
		}
	}
}

// Deliver hands a cross-window message to the flow. It reports whether
// the message was accepted.
func (f *Flow) Deliver(msg Message) bool {
	if _, ok := f.allowed[msg.Origin]; !ok {
		logger.WithModule("connect").Warnf("⚠️ Ignoring message from %q", msg.Origin)
		return false
	}

	f.mu.Lock()
	attempt := f.attempt
	f.mu.Unlock()

	switch msg.Type {
	case marketplace.MessageSuccess:
		return f.finish(attempt, Outcome{Connected: true, Message: msg.Message})
	case marketplace.MessageError:
		text := msg.Message
		if text == "" {
			text = msgPopupError
		}
		return f.finish(attempt, Outcome{Message: text})
	}
	return false
}

// finish applies the first signal of an attempt and drops any later one.
func (f *Flow) finish(attempt int, out Outcome) bool {
	f.mu.Lock()
	if f.step != StepConnecting || attempt != f.attempt {
		f.mu.Unlock()
		return false
	}

	f.abandonLocked()
	if out.Connected {
		f.step = StepDone
	} else {
		f.step = StepInstructions
		f.banner = out.Message
	}
	onConnected := f.opts.OnConnected
	f.mu.Unlock()

	if out.Connected && onConnected != nil {
		onConnected()
	}
	select {
	case f.outcomes <- out:
	default:
	}
	return true
}

// abandonLocked stops watching the current popup and closes it.
func (f *Flow) abandonLocked() {
	if f.stopPoll != nil {
		f.stopPoll()
		f.stopPoll = nil
	}
	if f.window != nil {
		if !f.window.Closed() {
			f.window.Close()
		}
		f.window = nil
	}
}

// Reset closes any popup and starts over with an empty form.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandonLocked()
	f.attempt++
	f.step = StepForm
	f.form = marketplace.ConnectRequest{}
	f.fieldErrors = nil
	f.banner = ""
	f.response = nil
}
