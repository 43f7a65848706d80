// Package wizard sequences the account registration flow.
//
// The flow is Type, Credentials, Name, Company (business accounts only),
// Address, Contact, Preferences and finally Welcome. Moving forward requires
// the current slide to validate, so invalid drafts cannot reach later
// slides. Welcome is only reached by a successful Submit and is locked.
package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// Submitter sends the registration request.
type Submitter interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.RegisterResponse, error)
}

// Wizard is the registration state machine. It is safe for concurrent use,
// but the draft returned by Draft must not be edited while Submit runs.
type Wizard struct {
	mu         sync.Mutex
	id         string
	slide      Slide
	kind       types.ContributorType
	draft      Draft
	err        error
	submitting bool
	result     *types.RegisterResponse
	metrics    *metrics.Metrics
}

// New starts a wizard on the Type slide with a fresh draft.
func New(m *metrics.Metrics) *Wizard {
	return &Wizard{
		id:      uuid.NewString(),
		slide:   SlideType,
		draft:   NewDraft(),
		metrics: m,
	}
}

// ID identifies this registration attempt in logs.
func (w *Wizard) ID() string {
	return w.id
}

// Slide returns the current slide.
func (w *Wizard) Slide() Slide {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slide
}

// Draft returns the draft for in-place editing by form fields. Its
// ContributorType mirrors the type chosen with SetContributorType; edits to
// it are overwritten on the next transition.
func (w *Wizard) Draft() *Draft {
	return &w.draft
}

// ContributorType returns the account type chosen on the first slide.
func (w *Wizard) ContributorType() types.ContributorType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kind
}

// Err returns the error of the last failed Submit, or nil.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Result returns the registration response once Welcome is reached.
func (w *Wizard) Result() *types.RegisterResponse {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Submitting reports whether a Submit is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// SetContributorType chooses the account type. It is only accepted on the
// Type slide. Switching away from business keeps the company fields in the
// draft, but they are skipped and not sent.
func (w *Wizard) SetContributorType(t types.ContributorType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.slide != SlideType {
		return amplyerrors.New(amplyerrors.ErrCodeWizardStep, "the account type can only be changed on the first slide").
			WithField("contributor_type")
	}
	w.kind = t
	w.draft.ContributorType = t
	return nil
}

// Next validates the current slide and advances. Preferences advances only
// through Submit, and Welcome is locked.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	from := w.slide
	err := w.nextLocked()
	w.observe(from, "next", err == nil)
	return err
}

func (w *Wizard) nextLocked() error {
	switch w.slide {
	case SlideWelcome:
		return amplyerrors.New(amplyerrors.ErrCodeWizardLocked, "registration is complete")
	case SlidePreferences:
		return amplyerrors.New(amplyerrors.ErrCodeWizardStep, "submit the registration to continue")
	}
	if w.submitting {
		return amplyerrors.New(amplyerrors.ErrCodeWizardStep, "registration is being submitted")
	}
	w.draft.ContributorType = w.kind
	if err := w.draft.Validate(w.slide); err != nil {
		return err
	}
	w.slide = forward[w.slide].target(w.kind)
	return nil
}

// Back returns to the previous slide. It does nothing on Type and is
// rejected on Welcome.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	from := w.slide
	var err error
	switch {
	case w.slide == SlideWelcome:
		err = amplyerrors.New(amplyerrors.ErrCodeWizardLocked, "registration is complete")
	case w.submitting:
		err = amplyerrors.New(amplyerrors.ErrCodeWizardStep, "registration is being submitted")
	default:
		w.draft.ContributorType = w.kind
		if prev := backward[w.slide].target(w.kind); prev != none {
			w.slide = prev
		}
	}
	w.observe(from, "back", err == nil)
	return err
}

// Submit sends the draft from the Preferences slide. On failure the slide
// and draft stay as they are and the error is kept for display. On success
// the wizard moves to Welcome.
func (w *Wizard) Submit(ctx context.Context, sub Submitter) (*types.RegisterResponse, error) {
	w.mu.Lock()
	if w.slide != SlidePreferences {
		w.mu.Unlock()
		return nil, amplyerrors.New(amplyerrors.ErrCodeWizardStep, "registration can only be submitted from the last slide")
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, amplyerrors.New(amplyerrors.ErrCodeWizardStep, "registration is already being submitted")
	}
	w.draft.ContributorType = w.kind
	for _, s := range Path(w.kind) {
		if err := w.draft.Validate(s); err != nil {
			w.err = err
			w.mu.Unlock()
			return nil, err
		}
	}
	req := w.draft.Request()
	w.submitting = true
	w.err = nil
	w.mu.Unlock()

	resp, err := sub.Register(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if w.metrics != nil {
		w.metrics.WizardSubmissions.WithLabelValues(string(req.ContributorType), metrics.BoolLabel(err == nil)).Inc()
	}
	if err != nil {
		w.err = err
		return nil, err
	}
	w.result = resp
	w.slide = SlideWelcome
	return resp, nil
}

// Progress returns the 1-based position of the current slide and the
// number of input slides for the chosen type (6, or 7 for business).
// Welcome reports total of total.
func (w *Wizard) Progress() (index, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := Path(w.kind)
	total = len(path)
	if w.slide == SlideWelcome {
		return total, total
	}
	for i, s := range path {
		if s == w.slide {
			return i + 1, total
		}
	}
	return 1, total
}

// Complete reports whether registration succeeded.
func (w *Wizard) Complete() bool {
	return w.Slide() == SlideWelcome
}

func (w *Wizard) observe(from Slide, direction string, accepted bool) {
	if w.metrics != nil {
		w.metrics.WizardTransitions.WithLabelValues(from.String(), direction, metrics.BoolLabel(accepted)).Inc()
	}
}
