package recovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
)

// Class tells the retry loop what to do with a failure.
type Class int

const (
	Transient Class = iota
	Permanent
	Fatal
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify maps an error onto the failure taxonomy. Unknown errors are
// permanent: retrying something we cannot name rarely helps.
func Classify(err error) Class {
	switch {
	case err == nil:
		return Permanent
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, entity.ErrAuthenticationFailure),
		errors.Is(err, entity.ErrSectionUnrecognized),
		errors.Is(err, entity.ErrNavigation):
		return Fatal
	case errors.Is(err, entity.ErrElementNotFound),
		errors.Is(err, entity.ErrNotInteractable),
		errors.Is(err, entity.ErrElementDetached),
		errors.Is(err, entity.ErrOracleTimeout),
		errors.Is(err, entity.ErrOracleError),
		errors.Is(err, entity.ErrSuggestionAbsent):
		return Transient
	default:
		return Permanent
	}
}

type Policy struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	BaseDelay   time.Duration `mapstructure:"base-delay"`
	MaxDelay    time.Duration `mapstructure:"max-delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2,
	}
}

// Delay is the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Reread returns a fresh descriptor of the field being applied.
type Reread func(ctx context.Context) (entity.FieldDescriptor, error)

// Result is the outcome of applying one decision.
type Result struct {
	Decision entity.FillDecision
	Outcome  entity.Outcome
	Attempts int
	Err      error
}

// Fatal reports whether the run has to stop.
func (r Result) Fatal() bool {
	return r.Err != nil && Classify(r.Err) == Fatal
}

// Recovery is the single retry component: every page action and oracle
// call goes through it.
type Recovery struct {
	policy Policy
	exec   output.ActionExecutor
	logger output.LoggerPort
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Recovery)

// WithSleep replaces the backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Recovery) { r.sleep = sleep }
}

func New(policy Policy, exec output.ActionExecutor, logger output.LoggerPort, opts ...Option) *Recovery {
	r := &Recovery{
		policy: policy,
		exec:   exec,
		logger: logger,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recovery) Policy() Policy {
	return r.policy
}

// Do runs fn until it succeeds, fails with a non-transient error or the
// policy runs out of attempts. It returns the number of attempts made.
func (r *Recovery) Do(ctx context.Context, op string, fn func(ctx context.Context) error) (int, error) {
	limit := r.policy.attempts()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}

		class := Classify(err)
		if class != Transient || attempt >= limit {
			if r.logger != nil {
				r.logger.Debug("Operation gave up",
					"op", op,
					"attempt", attempt,
					"class", class.String(),
					"error", err.Error(),
				)
			}
			return attempt, err
		}

		delay := r.policy.Delay(attempt)
		if r.logger != nil {
			r.logger.Warn("Retrying operation",
				"op", op,
				"attempt", attempt,
				"delay", delay.String(),
				"error", err.Error(),
			)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return attempt, err
		}
	}
}

// Apply executes decision against field. Before every retry the field is
// read again through reread. A permanent failure or exhausted retries turn
// the decision into a skip; fatal errors are returned in the result for
// the caller to abort on.
func (r *Recovery) Apply(ctx context.Context, decision entity.FillDecision, field entity.FieldDescriptor, reread Reread) Result {
	if decision.Skipped() {
		return Result{Decision: decision, Outcome: entity.OutcomeSkipped}
	}
	if !decision.Matches(field) {
		return Result{
			Decision: decision.Skip("decision belongs to another read"),
			Outcome:  entity.OutcomeSkipped,
		}
	}

	current := field
	unchanged := false
	tries := 0
	attempts, err := r.Do(ctx, "apply "+field.Label, func(ctx context.Context) error {
		tries++
		if tries > 1 && reread != nil {
			fresh, err := reread(ctx)
			if err != nil {
				return err
			}
			current = fresh
		}

		var err error
		unchanged, err = r.perform(ctx, decision, current)
		return err
	})

	switch {
	case err == nil && unchanged:
		return Result{Decision: decision, Outcome: entity.OutcomeUnchanged, Attempts: attempts}
	case err == nil:
		return Result{Decision: decision, Outcome: entity.OutcomeFilled, Attempts: attempts}
	case Classify(err) == Fatal:
		return Result{Decision: decision, Outcome: entity.OutcomeFailed, Attempts: attempts, Err: err}
	default:
		return Result{
			Decision: decision.Skip(fmt.Sprintf("apply failed after %d attempt(s): %v", attempts, err)),
			Outcome:  entity.OutcomeSkipped,
			Attempts: attempts,
			Err:      err,
		}
	}
}

// perform translates a decision into executor primitives. It reports
// unchanged when the field already holds the decided value.
func (r *Recovery) perform(ctx context.Context, d entity.FillDecision, f entity.FieldDescriptor) (bool, error) {
	switch d.Kind {
	case entity.KindText, entity.KindTextarea:
		value := d.Value()
		if f.Current == value {
			return true, nil
		}
		return false, r.exec.Type(ctx, f.Ref, value)

	case entity.KindRadio, entity.KindSingleSelect:
		opt, ok := f.MatchOption(d.Value())
		if !ok {
			return false, fmt.Errorf("%w: %q", entity.ErrOptionNotFound, d.Value())
		}
		if holds(f.Current, opt) {
			return true, nil
		}
		return false, r.exec.SelectOption(ctx, f.Ref, opt)

	case entity.KindMultiSelect:
		if f.Tagged {
			return false, fmt.Errorf("%w: tag input needs the multi-select handler", entity.ErrUnsupportedField)
		}
		selected := splitCurrent(f.Current)
		changed := false
		for _, v := range d.Values {
			opt, ok := f.MatchOption(v)
			if !ok {
				return false, fmt.Errorf("%w: %q", entity.ErrOptionNotFound, v)
			}
			if selected[entity.NormalizeText(opt.Value)] || selected[entity.NormalizeText(opt.Label)] {
				continue
			}
			if err := r.exec.SelectOption(ctx, f.Ref, opt); err != nil {
				return false, err
			}
			changed = true
		}
		return !changed, nil

	case entity.KindCheckbox:
		want := d.Value() == "true"
		if f.Checked == want {
			return true, nil
		}
		return false, r.exec.Click(ctx, f.Ref)

	case entity.KindDate:
		return r.typeDate(ctx, d, f)

	case entity.KindFile:
		return false, r.exec.UploadFile(ctx, f.Ref, d.Value())

	case entity.KindUnknown:
		return false, entity.ErrUnsupportedField
	default:
		return false, entity.ErrUnsupportedField
	}
}

func (r *Recovery) typeDate(ctx context.Context, d entity.FillDecision, f entity.FieldDescriptor) (bool, error) {
	if d.Date == nil || d.Date.IsZero() || d.Date.Present {
		return false, fmt.Errorf("%w: no concrete date", entity.ErrOptionNotFound)
	}

	if f.DateParts.Empty() {
		value := d.Date.ISO()
		if f.Current == value {
			return true, nil
		}
		return false, r.exec.Type(ctx, f.Ref, value)
	}

	type part struct{ ref, value string }
	parts := []part{
		{f.DateParts.Month, d.Date.MonthPart()},
		{f.DateParts.Day, d.Date.DayPart()},
		{f.DateParts.Year, d.Date.YearPart()},
	}

	var want []string
	for _, p := range parts {
		if p.ref != "" && p.value != "" {
			want = append(want, p.value)
		}
	}
	if len(want) == 0 {
		return false, fmt.Errorf("%w: date parts do not fit %s", entity.ErrOptionNotFound, d.Date)
	}
	if f.Current == strings.Join(want, "/") {
		return true, nil
	}

	for _, p := range parts {
		if p.ref == "" || p.value == "" {
			continue
		}
		if err := r.exec.Type(ctx, p.ref, p.value); err != nil {
			return false, err
		}
	}
	return false, nil
}

func holds(current string, opt entity.Option) bool {
	c := entity.NormalizeText(current)
	return c != "" && (c == entity.NormalizeText(opt.Value) || c == entity.NormalizeText(opt.Label))
}

func splitCurrent(current string) map[string]bool {
	out := make(map[string]bool)
	for _, part := range strings.Split(current, ",") {
		if p := entity.NormalizeText(part); p != "" {
			out[p] = true
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
