package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"reelworks/internal/domain"
	"reelworks/internal/pricing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the submit workflow state for one selection
type State string

const (
	StateIdle        State = "idle"
	StateSubmitting  State = "submitting"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateRedirecting State = "redirecting"
)

var (
	ErrSubmitInFlight     = errors.New("a submission is already in progress for this order")
	ErrAlreadySubmitted   = errors.New("order has already been submitted")
	ErrQuantityOutOfRange = fmt.Errorf("quantity must be between %d and %d", domain.MinQuantity, domain.MaxQuantity)
	ErrContactInvalid     = errors.New("contact details are missing or invalid")
	ErrRelayRejected      = errors.New("order relay rejected the submission")
)

var validate = validator.New()

// Notifier receives submit outcomes as a side channel. Notifications
// are fire-and-forget: the workflow's transitions do not depend on
// what any notifier does with them.
type Notifier interface {
	SubmitSucceeded(sessionID uuid.UUID, total int)
	SubmitFailed(sessionID uuid.UUID, err error)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

func (NopNotifier) SubmitSucceeded(uuid.UUID, int) {}
func (NopNotifier) SubmitFailed(uuid.UUID, error)  {}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) SubmitSucceeded(sessionID uuid.UUID, total int) {
	n.Logger.Info("Order submitted",
		zap.String("session_id", sessionID.String()),
		zap.Int("total", total),
	)
}

func (n LogNotifier) SubmitFailed(sessionID uuid.UUID, err error) {
	n.Logger.Warn("Order submission failed",
		zap.String("session_id", sessionID.String()),
		zap.Error(err),
	)
}

// Result describes a successful submission. The caller performs the
// actual navigation after RedirectDelay; the workflow only constructs
// the target.
type Result struct {
	RedirectURL   string        `json:"redirect_url"`
	RedirectDelay time.Duration `json:"redirect_delay"`
	Total         int           `json:"total"`
}

// relayPayload mirrors the JSON shape the external form relay expects:
// contact fields flattened at the top level next to the order fields.
type relayPayload struct {
	FullName   string   `json:"fullName"`
	Email      string   `json:"email"`
	Website    string   `json:"website"`
	Brief      string   `json:"brief"`
	VideoType  string   `json:"videoType"`
	Quantity   int      `json:"quantity"`
	AddOns     []string `json:"addOns"`
	TotalPrice int      `json:"totalPrice"`
}

// Config holds the external endpoints and timing for the workflow.
// StateTTL bounds how long per-session workflow states are retained;
// it should match the selection store's TTL so a session whose
// selection has expired does not keep a stale state entry around.
type Config struct {
	RelayURL       string
	PaymentURL     string
	RedirectDelay  time.Duration
	RequestTimeout time.Duration
	StateTTL       time.Duration
}

// Submitter runs the submit state machine for order selections:
// Idle -> Submitting -> Succeeded -> Redirecting on success, and
// Idle -> Submitting -> Failed -> Idle on failure (the next submit
// attempt leaves Failed). Succeeded never returns to Idle.
type Submitter struct {
	config   Config
	client   *http.Client
	notifier Notifier
	logger   *zap.Logger

	mu     sync.Mutex
	states map[uuid.UUID]sessionState
}

// sessionState pairs a workflow state with its last transition time so
// abandoned entries can be evicted once they outlive the session.
type sessionState struct {
	state   State
	updated time.Time
}

// NewSubmitter creates a Submitter. A nil notifier disables
// notifications. A zero StateTTL defaults to one hour.
func NewSubmitter(config Config, notifier Notifier, logger *zap.Logger) *Submitter {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if config.StateTTL <= 0 {
		config.StateTTL = time.Hour
	}
	return &Submitter{
		config:   config,
		client:   &http.Client{Timeout: config.RequestTimeout},
		notifier: notifier,
		logger:   logger,
		states:   make(map[uuid.UUID]sessionState),
	}
}

// State returns the current workflow state for a selection. Entries
// that have outlived the session TTL read as Idle and are dropped,
// matching the selection store's own expiry.
func (s *Submitter) State(sessionID uuid.UUID) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[sessionID]
	if !ok {
		return StateIdle
	}
	if s.expired(entry) {
		delete(s.states, sessionID)
		return StateIdle
	}
	return entry.state
}

// Submit runs one submission attempt for the selection and its quote.
// Exactly one outbound request is made per accepted attempt; at most
// one attempt per selection can be in flight at a time. On success the
// caller receives the payment redirect target and must treat the
// selection as finished.
func (s *Submitter) Submit(ctx context.Context, sel *domain.OrderSelection, quote pricing.Quote) (*Result, error) {
	// Reject out-of-range quantities before any side effect. The input
	// surface constrains the field to the same range, but the value
	// arrives here unclamped and must not reach the relay or the
	// payment link.
	if !sel.QuantityInRange() {
		return nil, ErrQuantityOutOfRange
	}

	// The relay accepts anything, so the required contact fields have
	// to be checked here before the order leaves the system.
	if err := validate.Struct(sel.Contact); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrContactInvalid, contactFieldList(err))
	}

	if err := s.begin(sel.SessionID); err != nil {
		return nil, err
	}

	if err := s.postToRelay(ctx, sel, quote); err != nil {
		s.transition(sel.SessionID, StateFailed)
		s.notifier.SubmitFailed(sel.SessionID, err)
		return nil, err
	}

	s.transition(sel.SessionID, StateSucceeded)
	s.notifier.SubmitSucceeded(sel.SessionID, quote.Total)

	redirectURL, err := s.paymentRedirect(quote.Total)
	if err != nil {
		// The order is already relayed; a bad payment link is a
		// configuration error, not a submit failure.
		return nil, fmt.Errorf("failed to build payment redirect: %w", err)
	}

	s.transition(sel.SessionID, StateRedirecting)

	return &Result{
		RedirectURL:   redirectURL,
		RedirectDelay: s.config.RedirectDelay,
		Total:         quote.Total,
	}, nil
}

// Forget drops the workflow state for a finished session
func (s *Submitter) Forget(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
}

// begin moves the selection into Submitting, enforcing the single
// in-flight submission invariant. Each accepted attempt also sweeps
// out entries whose sessions have expired, so the state map only holds
// live sessions.
func (s *Submitter) begin(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	switch s.states[sessionID].state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSucceeded, StateRedirecting:
		return ErrAlreadySubmitted
	}

	s.states[sessionID] = sessionState{state: StateSubmitting, updated: time.Now()}
	return nil
}

func (s *Submitter) transition(sessionID uuid.UUID, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = sessionState{state: state, updated: time.Now()}
}

// sweep removes entries that have outlived the session TTL. In-flight
// attempts are kept regardless of age; their lifetime is bounded by
// the request timeout. Caller holds the lock.
func (s *Submitter) sweep() {
	for id, entry := range s.states {
		if entry.state != StateSubmitting && s.expired(entry) {
			delete(s.states, id)
		}
	}
}

func (s *Submitter) expired(entry sessionState) bool {
	return entry.state != StateSubmitting && time.Since(entry.updated) > s.config.StateTTL
}

// contactFieldList renders the offending contact fields of a
// validation error for the wrapped error message.
func contactFieldList(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return strings.Join(fields, ", ")
}

// postToRelay makes the single outbound request. Network errors and
// non-2xx responses collapse into the same failure outcome; the
// response body is never parsed.
func (s *Submitter) postToRelay(ctx context.Context, sel *domain.OrderSelection, quote pricing.Quote) error {
	addOns := sel.AddOnIDs
	if addOns == nil {
		addOns = []string{}
	}

	body, err := json.Marshal(relayPayload{
		FullName:   sel.Contact.FullName,
		Email:      sel.Contact.Email,
		Website:    sel.Contact.Website,
		Brief:      sel.Contact.Brief,
		VideoType:  sel.VideoTypeID,
		Quantity:   sel.Quantity,
		AddOns:     addOns,
		TotalPrice: quote.Total,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.RelayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("Relay returned non-success status",
			zap.String("session_id", sel.SessionID.String()),
			zap.Int("status", resp.StatusCode),
		)
		return ErrRelayRejected
	}

	return nil
}

// paymentRedirect appends the computed total to the payment link. The
// amount is client-computed and the payment provider is expected to
// re-validate it server-side.
func (s *Submitter) paymentRedirect(total int) (string, error) {
	u, err := url.Parse(s.config.PaymentURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(total))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
