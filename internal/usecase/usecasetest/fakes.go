// Package usecasetest holds in-memory stand-ins for the output ports, for
// use-case tests.
package usecasetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
)

type NopLogger struct{}

var _ output.LoggerPort = NopLogger{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (l NopLogger) WithField(string, any) output.LoggerPort { return l }
func (l NopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (NopLogger) Close() error { return nil }

// NoSleep skips backoff waits.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Executor records every action as a "verb target value" line. Errors
// queued in Fail are returned, one per call, for the matching verb and
// target.
type Executor struct {
	mu      sync.Mutex
	Actions []string
	// Fail maps "verb target" to errors returned by successive calls.
	Fail map[string][]error
	// Disabled lists selectors reported as not enabled.
	Disabled map[string]bool
	// NoTag lists items for which no tag ever appears.
	NoTag map[string]bool
	tags  map[string]bool
	// OnClick runs after a successful click.
	OnClick func(selector string)
}

var _ output.ActionExecutor = (*Executor)(nil)

func NewExecutor() *Executor {
	return &Executor{
		Fail:     make(map[string][]error),
		Disabled: make(map[string]bool),
		NoTag:    make(map[string]bool),
		tags:     make(map[string]bool),
	}
}

func (e *Executor) do(verb, target, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := verb + " " + target
	if errs := e.Fail[key]; len(errs) > 0 {
		e.Fail[key] = errs[1:]
		if errs[0] != nil {
			return errs[0]
		}
	}
	line := key
	if value != "" {
		line += " " + value
	}
	e.Actions = append(e.Actions, line)
	return nil
}

func (e *Executor) Click(_ context.Context, selector string) error {
	if err := e.do("click", selector, ""); err != nil {
		return err
	}
	if e.OnClick != nil {
		e.OnClick(selector)
	}
	return nil
}

func (e *Executor) Type(_ context.Context, selector, text string) error {
	return e.do("type", selector, text)
}

func (e *Executor) SelectOption(_ context.Context, selector string, option entity.Option) error {
	return e.do("select", selector, option.Value)
}

func (e *Executor) UploadFile(_ context.Context, selector, path string) error {
	return e.do("upload", selector, path)
}

func (e *Executor) ConfirmSuggestion(_ context.Context, selector, text string) error {
	if err := e.do("confirm", selector, text); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.NoTag[text] {
		e.tags[entity.NormalizeText(text)] = true
	}
	return nil
}

func (e *Executor) HasTag(_ context.Context, _ string, text string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tags[entity.NormalizeText(text)], nil
}

func (e *Executor) Enabled(_ context.Context, selector string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Disabled[selector], nil
}

// Count returns how many recorded actions start with prefix.
func (e *Executor) Count(prefix string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, a := range e.Actions {
		if strings.HasPrefix(a, prefix) {
			n++
		}
	}
	return n
}

// Oracle answers from a label table and counts calls.
type Oracle struct {
	mu      sync.Mutex
	Answers map[string][]string
	Errs    []error
	Calls   []output.OracleRequest
}

var _ output.Oracle = (*Oracle)(nil)

func (o *Oracle) Ask(ctx context.Context, req output.OracleRequest) (*output.OracleResponse, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Calls = append(o.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(o.Errs) > 0 {
		err := o.Errs[0]
		o.Errs = o.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	values, ok := o.Answers[req.Label]
	if !ok {
		return &output.OracleResponse{NoMatch: true}, nil
	}
	return &output.OracleResponse{Values: values, Raw: strings.Join(values, ",")}, nil
}

func (o *Oracle) Name() string { return "fake" }

func (o *Oracle) CallCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Calls)
}

// Page serves fixed HTML per locator.
type Page struct {
	mu sync.Mutex
	// HTML maps a locator to the markup of its container.
	HTML   map[string]string
	Popups map[string]map[string][]entity.Option
	// Missing lists locators WaitSection never finds.
	Missing map[string]bool
	// Shown lists selectors Visible reports as shown.
	Shown   map[string]bool
	OpenErr error
	// OnSnapshot runs before each snapshot, e.g. to cancel a context.
	OnSnapshot func(locator string)

	Opened []string
	Waits  []string
	Shots  int
	reads  int
}

var _ output.PagePort = (*Page)(nil)

func NewPage() *Page {
	return &Page{
		HTML:    make(map[string]string),
		Popups:  make(map[string]map[string][]entity.Option),
		Missing: make(map[string]bool),
		Shown:   make(map[string]bool),
	}
}

func (p *Page) Open(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Opened = append(p.Opened, url)
	return p.OpenErr
}

func (p *Page) WaitSection(ctx context.Context, locator string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.Waits = append(p.Waits, locator)
	return !p.Missing[locator], nil
}

func (p *Page) Snapshot(ctx context.Context, locator string) (*entity.SectionSnapshot, error) {
	if p.OnSnapshot != nil {
		p.OnSnapshot(locator)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.reads++
	markup, ok := p.HTML[locator]
	if !ok {
		markup = "<div></div>"
	}
	return &entity.SectionSnapshot{
		ReadID:  fmt.Sprintf("read-%d", p.reads),
		Locator: locator,
		HTML:    markup,
		Popups:  p.Popups[locator],
		TakenAt: time.Now(),
	}, nil
}

func (p *Page) Visible(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Shown[selector], nil
}

func (p *Page) Screenshot(_ context.Context) (*entity.Screenshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shots++
	return &entity.Screenshot{Data: []byte("png"), Format: "png", Width: 1, Height: 1}, nil
}

func (p *Page) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Opened) == 0 {
		return ""
	}
	return p.Opened[len(p.Opened)-1]
}

func (p *Page) Close() {}

// Recorder keeps the run record in memory.
type Recorder struct {
	mu          sync.Mutex
	Entries     []entity.RunEntry
	Screenshots []string
}

var _ output.RunRecorder = (*Recorder)(nil)

func (r *Recorder) Record(entry entity.RunEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, entry)
	return nil
}

func (r *Recorder) SaveScreenshot(name string, _ *entity.Screenshot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := name + ".png"
	r.Screenshots = append(r.Screenshots, path)
	return path, nil
}

func (r *Recorder) Dir() string { return "" }
func (r *Recorder) Close() error { return nil }

// Section returns the entries recorded for section.
func (r *Recorder) Section(section entity.State) []entity.RunEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.RunEntry
	for _, e := range r.Entries {
		if e.Section == section {
			out = append(out, e)
		}
	}
	return out
}
