package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/usecase/extractor"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/ysmood/gson"
)

var (
	_ output.PagePort       = (*BrowserAdapter)(nil)
	_ output.ActionExecutor = (*BrowserAdapter)(nil)
)

var (
	ErrBrowserNotConnected = errors.New("browser not connected")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSelector     = errors.New("invalid selector")
)

const (
	defaultTimeout        = 10 * time.Second
	defaultSectionTimeout = 20 * time.Second
	defaultSlowMotion     = 250 * time.Millisecond
	popupTimeout          = 3 * time.Second
	screenshotMaxWidth    = 1024

	optionSelector     = `[role="listbox"] [role="option"], [visibility="opened"] [role="option"]`
	suggestionSelector = `[data-automation-id="promptOption"], [role="listbox"] [role="option"]`
)

type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"`
	SlowMotion     time.Duration `mapstructure:"slow-motion"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SectionTimeout time.Duration `mapstructure:"section-timeout"`
	NoSandbox      bool          `mapstructure:"no-sandbox"`
	DevTools       bool          `mapstructure:"devtools"`
	// DisableSecurityFeatures turns off web security in the launched
	// browser. Some portals embed cross-origin upload widgets.
	DisableSecurityFeatures bool `mapstructure:"disable-security-features"`
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       false,
		SlowMotion:     defaultSlowMotion,
		Timeout:        defaultTimeout,
		SectionTimeout: defaultSectionTimeout,
	}
}

// BrowserAdapter drives a single rod page. It implements both the page
// reader and the action executor.
type BrowserAdapter struct {
	mu       sync.RWMutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	section  time.Duration
	closed   bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SectionTimeout <= 0 {
		cfg.SectionTimeout = defaultSectionTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		section:  cfg.SectionTimeout,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) GetTimeout() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.timeout
}

// SetTimeout changes the per-action timeout. Non-positive values are
// ignored.
func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

func (b *BrowserAdapter) live(ctx context.Context) (*rod.Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed || b.page == nil {
		return nil, ErrBrowserNotConnected
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) Open(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	page, err := b.live(ctx)
	if err != nil {
		return err
	}

	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(b.section).WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	_ = page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) WaitSection(ctx context.Context, locator string) (bool, error) {
	page, err := b.live(ctx)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(locator) == "" {
		return false, ErrInvalidSelector
	}

	_, err = find(page.Timeout(b.section), locator)
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return false, nil
	default:
		return false, classify(err)
	}
}

// tagScript stamps every visible control under the element with a
// data-fp-ref. Existing refs are kept so a field keeps its ref across
// reads.
const tagScript = `function (prefix) {
	const controls = this.querySelectorAll('input, textarea, select, button[aria-haspopup="listbox"], [role="combobox"]');
	let n = window.__fpSeq || 0;
	for (const el of controls) {
		if (el.hasAttribute('data-fp-ref')) continue;
		if (el.type === 'hidden') continue;
		const r = el.getBoundingClientRect();
		if (el.type !== 'file' && r.width === 0 && r.height === 0 && el.offsetParent === null) continue;
		n++;
		el.setAttribute('data-fp-ref', prefix + String(n).padStart(4, '0'));
	}
	window.__fpSeq = n;
	return n;
}`

func (b *BrowserAdapter) Snapshot(ctx context.Context, locator string) (*entity.SectionSnapshot, error) {
	page, err := b.live(ctx)
	if err != nil {
		return nil, err
	}
	el, err := find(page.Timeout(b.GetTimeout()), locator)
	if err != nil {
		return nil, classify(err)
	}

	if _, err := el.Eval(tagScript, "fp-"); err != nil {
		return nil, fmt.Errorf("tag controls: %w", classify(err))
	}

	popups, err := b.listboxOptions(page, el)
	if err != nil {
		return nil, err
	}

	markup, err := el.HTML()
	if err != nil {
		return nil, fmt.Errorf("read section html: %w", classify(err))
	}

	return &entity.SectionSnapshot{
		ReadID:  uuid.NewString(),
		Locator: locator,
		HTML:    markup,
		Popups:  popups,
		TakenAt: time.Now(),
	}, nil
}

// listboxOptions opens every custom dropdown under el once and reads its
// options. Dropdowns that do not open are left out.
func (b *BrowserAdapter) listboxOptions(page *rod.Page, el *rod.Element) (map[string][]entity.Option, error) {
	buttons, err := el.Elements(fmt.Sprintf(`button[aria-haspopup="listbox"][%s]`, extractor.RefAttr))
	if err != nil {
		return nil, classify(err)
	}

	popups := make(map[string][]entity.Option)
	for _, btn := range buttons {
		ref, err := btn.Attribute(extractor.RefAttr)
		if err != nil || ref == nil {
			continue
		}
		if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		if _, err := page.Timeout(popupTimeout).Element(optionSelector); err != nil {
			continue
		}

		items, err := page.Elements(optionSelector)
		if err == nil {
			var options []entity.Option
			for _, item := range items {
				label, err := item.Text()
				if err != nil {
					continue
				}
				label = strings.TrimSpace(label)
				if label == "" {
					continue
				}
				value := label
				if v, err := item.Attribute("data-value"); err == nil && v != nil && *v != "" {
					value = *v
				}
				options = append(options, entity.Option{Label: label, Value: value})
			}
			popups[*ref] = options
		}
		_ = page.Keyboard.Press(input.Escape)
	}
	return popups, nil
}

func (b *BrowserAdapter) Visible(ctx context.Context, selector string) (bool, error) {
	page, err := b.live(ctx)
	if err != nil {
		return false, err
	}
	var (
		has bool
		el  *rod.Element
	)
	if isXPathSelector(selector) {
		has, el, err = page.HasX(strings.TrimPrefix(selector, "xpath="))
	} else {
		has, el, err = page.Has(selector)
	}
	if err != nil || !has {
		return false, err
	}
	return el.Visible()
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.live(ctx)
	if err != nil {
		return nil, err
	}
	imgBytes, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	page, err := b.live(context.Background())
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) element(ctx context.Context, selector string) (*rod.Page, *rod.Element, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, nil, ErrInvalidSelector
	}
	page, err := b.live(ctx)
	if err != nil {
		return nil, nil, err
	}
	el, err := find(page.Timeout(b.GetTimeout()), selector)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%s: %w", selector, classify(err))
	}
	return page, el.Context(ctx), nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	page, el, err := b.element(ctx, selector)
	if err != nil {
		return err
	}
	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, classify(err))
	}
	_ = page.WaitIdle(time.Second)
	return nil
}

func (b *BrowserAdapter) Type(ctx context.Context, selector, text string) error {
	_, el, err := b.element(ctx, selector)
	if err != nil {
		return err
	}
	_ = el.ScrollIntoView()
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, classify(err))
	}
	return nil
}

func (b *BrowserAdapter) SelectOption(ctx context.Context, selector string, option entity.Option) error {
	page, el, err := b.element(ctx, selector)
	if err != nil {
		return err
	}

	tag, err := el.Property("tagName")
	if err != nil {
		return classify(err)
	}
	typ, _ := el.Property("type")

	switch {
	case strings.EqualFold(tag.Str(), "select"):
		if err := el.Select([]string{option.Label}, true, rod.SelectorTypeText); err != nil {
			return fmt.Errorf("%w: %s in %s: %v", entity.ErrOptionNotFound, option.Label, selector, err)
		}
		return nil

	case typ.Str() == "radio":
		name, err := el.Attribute("name")
		if err != nil || name == nil {
			return el.Click(proto.InputMouseButtonLeft, 1)
		}
		radio, err := page.Timeout(b.GetTimeout()).Element(
			fmt.Sprintf(`input[type="radio"][name=%q][value=%q]`, *name, option.Value))
		if err != nil {
			return fmt.Errorf("%w: %s", entity.ErrOptionNotFound, option.Value)
		}
		return classify(radio.Click(proto.InputMouseButtonLeft, 1))

	default:
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("open %s: %w", selector, classify(err))
		}
		item, err := page.Timeout(popupTimeout).ElementR(optionSelector, exactText(option.Label))
		if err != nil {
			_ = page.Keyboard.Press(input.Escape)
			return fmt.Errorf("%w: %s", entity.ErrOptionNotFound, option.Label)
		}
		if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("pick %s: %w", option.Label, classify(err))
		}
		_ = page.WaitIdle(time.Second)
		return nil
	}
}

func (b *BrowserAdapter) UploadFile(ctx context.Context, selector, path string) error {
	_, el, err := b.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SetFiles([]string{path}); err != nil {
		return fmt.Errorf("upload %s: %w", path, classify(err))
	}
	return nil
}

func (b *BrowserAdapter) ConfirmSuggestion(ctx context.Context, selector, text string) error {
	page, _, err := b.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return classify(err)
	}

	item, err := page.Timeout(popupTimeout).ElementR(suggestionSelector, exactText(text))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %q", entity.ErrSuggestionAbsent, text)
	}
	if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("pick suggestion %q: %w", text, classify(err))
	}
	_ = page.WaitIdle(time.Second)
	return nil
}

const hasTagScript = `function (text) {
	const box = this.closest('[data-automation-id="multiSelectContainer"], [data-multiselect]') || this.parentElement;
	if (!box) return false;
	const want = text.trim().toLowerCase();
	return Array.from(box.querySelectorAll('[data-automation-id="selectedItem"], [data-tag]'))
		.some(t => t.textContent.trim().toLowerCase() === want);
}`

func (b *BrowserAdapter) HasTag(ctx context.Context, selector, text string) (bool, error) {
	_, el, err := b.element(ctx, selector)
	if err != nil {
		return false, err
	}
	res, err := el.Eval(hasTagScript, text)
	if err != nil {
		return false, classify(err)
	}
	return res.Value.Bool(), nil
}

const enabledScript = `function () {
	return !(this.disabled || this.getAttribute('aria-disabled') === 'true');
}`

func (b *BrowserAdapter) Enabled(ctx context.Context, selector string) (bool, error) {
	_, el, err := b.element(ctx, selector)
	if err != nil {
		return false, err
	}
	res, err := el.Eval(enabledScript)
	if err != nil {
		return false, classify(err)
	}
	return res.Value.Bool(), nil
}

func find(page *rod.Page, selector string) (*rod.Element, error) {
	if isXPathSelector(selector) {
		return page.ElementX(strings.TrimPrefix(selector, "xpath="))
	}
	return page.Element(selector)
}

// classify maps rod failures onto the page error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		notFound    *rod.ElementNotFoundError
		notInteract *rod.NotInteractableError
		invisible   *rod.InvisibleShapeError
		covered     *rod.CoveredError
		objectGone  *rod.ObjectNotFoundError
		navigation  *rod.NavigationError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", entity.ErrElementNotFound, err)
	case errors.As(err, &notInteract), errors.As(err, &invisible), errors.As(err, &covered):
		return fmt.Errorf("%w: %v", entity.ErrNotInteractable, err)
	case errors.As(err, &objectGone), detached(err):
		return fmt.Errorf("%w: %v", entity.ErrElementDetached, err)
	case errors.As(err, &navigation):
		return fmt.Errorf("%w: %v", entity.ErrNavigation, err)
	default:
		return err
	}
}

func detached(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Node is detached") ||
		strings.Contains(msg, "Cannot find context with specified id") ||
		strings.Contains(msg, "No node with given id")
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "(") ||
		strings.HasPrefix(selector, "xpath=")
}

func exactText(text string) string {
	return `/^\s*` + regexp.QuoteMeta(strings.TrimSpace(text)) + `\s*$/i`
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
