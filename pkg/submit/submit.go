// Package submit sends a completed census form to the remote endpoint once.
//
// A Submitter guards the one-shot flow with a latch that moves from
// NotSubmitted to InFlight to Submitted. Submitted is terminal: every later
// attempt is rejected before any network call. A failed attempt returns the
// latch to NotSubmitted and leaves the form untouched so it can be retried.
package submit

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/validation"
)

const tracerName = "github.com/goliatone/go-census/pkg/submit"

var (
	// ErrAlreadySubmitted rejects any attempt after a successful submission.
	ErrAlreadySubmitted = errors.New("submit: this form has already been submitted")
	// ErrInFlight rejects an attempt while another one is still running.
	ErrInFlight = errors.New("submit: a submission is already in progress")
	// ErrConfig reports a missing or malformed submission endpoint. No
	// network call is made.
	ErrConfig = errors.New("submit: submission endpoint is not configured")
	// ErrTransport reports a failed outbound call. The form is left as it
	// was so the user can retry.
	ErrTransport = errors.New("submit: submission failed, please try again")
	// ErrContract reports a payload rejected by the pre-flight check.
	ErrContract = errors.New("submit: payload does not match the submission contract")
)

// ValidationError carries the failing hard validation report.
type ValidationError struct {
	Report validation.Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submit: %d field(s) need attention before submitting", len(e.Report.Issues))
}

// State is the position of the submission latch.
type State int

const (
	NotSubmitted State = iota
	InFlight
	Submitted
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in_flight"
	case Submitted:
		return "submitted"
	default:
		return "not_submitted"
	}
}

// Form is the session surface the submitter needs.
type Form interface {
	CheckAll() validation.Report
	Payload() map[string]any
	DraftUsed() bool
	Lock()
}

// Contract checks a payload before it is sent.
type Contract interface {
	ValidatePayload(payload map[string]any) error
}

// Receipt describes a delivered submission.
type Receipt struct {
	PublicID  string
	RequestID string
	SentAt    time.Time
}

// Submitter runs the submission flow for one session.
type Submitter struct {
	cfg       config.Config
	transport Transport
	drafts    *draft.Manager
	contract  Contract
	logger    logr.Logger
	tracer    trace.Tracer
	now       func() time.Time
	suffix    func() string

	mu    sync.Mutex
	state State
	last  Receipt
}

// Option customises a Submitter.
type Option func(*Submitter)

// WithDrafts sets the draft manager cleared after a successful submission.
func WithDrafts(m *draft.Manager) Option {
	return func(s *Submitter) { s.drafts = m }
}

// WithContract enables the payload pre-flight check.
func WithContract(c Contract) Option {
	return func(s *Submitter) { s.contract = c }
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Submitter) { s.logger = logger }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Submitter) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock sets the clock used for the receipt id and client time.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSuffix sets the generator of the random receipt suffix.
func WithSuffix(fn func() string) Option {
	return func(s *Submitter) {
		if fn != nil {
			s.suffix = fn
		}
	}
}

// New returns a Submitter posting to cfg.SubmitURL through transport.
func New(cfg config.Config, transport Transport, opts ...Option) *Submitter {
	s := &Submitter{
		cfg:       cfg,
		transport: transport,
		logger:    logr.Discard(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		suffix:    randomSuffix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.transport == nil {
		s.transport = NewHTTPTransport(nil)
	}
	return s
}

// State returns the latch position.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Receipt returns the receipt of the successful submission, if any.
func (s *Submitter) Receipt() (Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.state == Submitted
}

// Submit validates form, sends its payload and, on success, clears the draft,
// sets the latch and locks the form.
func (s *Submitter) Submit(ctx context.Context, form Form) (Receipt, error) {
	if err := s.enter(); err != nil {
		return Receipt{}, err
	}
	receipt, err := s.submit(ctx, form)
	s.leave(receipt, err)
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (s *Submitter) enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Submitted:
		return ErrAlreadySubmitted
	case InFlight:
		return ErrInFlight
	}
	s.state = InFlight
	return nil
}

func (s *Submitter) leave(receipt Receipt, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = NotSubmitted
		return
	}
	s.state = Submitted
	s.last = receipt
}

func (s *Submitter) submit(ctx context.Context, form Form) (Receipt, error) {
	if report := form.CheckAll(); !report.OK {
		return Receipt{}, &ValidationError{Report: report}
	}
	if !s.cfg.EndpointConfigured() {
		return Receipt{}, ErrConfig
	}

	now := s.now()
	receipt := Receipt{
		PublicID:  PublicID(s.cfg.SubmissionPrefix, now, s.suffix()),
		RequestID: uuid.NewString(),
		SentAt:    now.UTC(),
	}

	payload := form.Payload()
	payload["public_submission_id"] = receipt.PublicID
	payload["client_time"] = receipt.SentAt.Format("2006-01-02T15:04:05.000Z07:00")
	payload["draft_used"] = form.DraftUsed() || (s.drafts != nil && s.drafts.Exists(ctx))
	payload["client_request_id"] = receipt.RequestID

	if s.contract != nil {
		if err := s.contract.ValidatePayload(payload); err != nil {
			return Receipt{}, fmt.Errorf("%w: %w", ErrContract, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("submit: encode payload: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "census.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("census.public_id", receipt.PublicID),
			attribute.String("census.request_id", receipt.RequestID),
			attribute.Int("census.payload_bytes", len(body)),
		),
	)
	defer span.End()

	result := s.transport.Send(ctx, strings.TrimSpace(s.cfg.SubmitURL), body)
	if !result.OK() {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "transport failed")
		s.logger.Error(result.Err, "submission not delivered", "public_id", receipt.PublicID)
		return Receipt{}, fmt.Errorf("%w: %v", ErrTransport, result.Err)
	}
	span.SetStatus(codes.Ok, "")

	// Locked before the clear so autosave cannot write the draft back.
	form.Lock()
	if s.drafts != nil {
		s.drafts.Clear(ctx)
	}
	s.logger.Info("submission sent", "public_id", receipt.PublicID, "request_id", receipt.RequestID)
	return receipt, nil
}

// PublicID formats the human readable receipt id PREFIX-YYYYMMDD-XXXX.
func PublicID(prefix string, at time.Time, suffix string) string {
	if prefix == "" {
		prefix = "HFC"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(suffix))
}

// randomSuffix draws four base36 characters from a random UUID. The id is
// cosmetic and not meant to be unique.
func randomSuffix() string {
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[:4]) % (36 * 36 * 36 * 36)
	s := strconv.FormatUint(uint64(n), 36)
	return strings.ToUpper(strings.Repeat("0", 4-len(s)) + s)
}
