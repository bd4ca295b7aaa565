package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RefAttr is the attribute the page layer stamps on every visible control
// before taking a snapshot.
const RefAttr = "data-fp-ref"

const (
	controlSelector   = `input, textarea, select, button[aria-haspopup="listbox"], [role="combobox"]:not(input)`
	formFieldSelector = `[data-automation-id^="formField-"]`
	multiSelector     = `[data-automation-id="multiSelectContainer"], [data-multiselect]`
	tagSelector       = `[data-automation-id="selectedItem"], [data-tag]`
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	placeholder = regexp.MustCompile(`(?i)^(select( one)?|choose( one)?|--.*--|please select.*)$`)
	cssIdent    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Extractor turns a section snapshot into field descriptors. It never
// touches the live page.
type Extractor struct {
	clean  *CleanConfig
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *Extractor {
	return &Extractor{clean: &DefaultCleanConfig, logger: logger}
}

// Extract returns one descriptor per logical control in document order.
// Radio buttons sharing a name and the parts of a composite date collapse
// into one descriptor; controls of unsupported shape are kept as unknown.
func (e *Extractor) Extract(snap *entity.SectionSnapshot) ([]entity.FieldDescriptor, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	root, err := Sanitize(snap.HTML, e.clean)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	r := newRead(goquery.NewDocumentFromNode(root), snap)
	r.walk()

	if e.logger != nil {
		e.logger.Debug("Fields extracted",
			"locator", snap.Locator,
			"readId", snap.ReadID,
			"count", len(r.fields),
		)
	}
	return r.fields, nil
}

// read holds the state of a single extraction pass.
type read struct {
	doc      *goquery.Document
	snap     *entity.SectionSnapshot
	tagged   bool
	labelFor map[string]string
	byID     map[string]*goquery.Selection
	consumed map[*html.Node]bool
	radios   map[string]bool
	fields   []entity.FieldDescriptor

	lastListboxLabel string
}

func newRead(doc *goquery.Document, snap *entity.SectionSnapshot) *read {
	r := &read{
		doc:      doc,
		snap:     snap,
		tagged:   doc.Find("[" + RefAttr + "]").Length() > 0,
		labelFor: make(map[string]string),
		byID:     make(map[string]*goquery.Selection),
		consumed: make(map[*html.Node]bool),
		radios:   make(map[string]bool),
	}

	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		if _, ok := r.labelFor[id]; !ok {
			r.labelFor[id] = s.Text()
		}
	})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if _, ok := r.byID[id]; !ok {
			r.byID[id] = s
		}
	})
	return r
}

func (r *read) walk() {
	r.doc.Find(controlSelector).Each(func(_ int, s *goquery.Selection) {
		if r.tagged && !hasAttr(s, RefAttr) {
			return
		}
		if r.consumed[s.Get(0)] {
			return
		}

		if ms := s.Closest(multiSelector); ms.Length() > 0 {
			r.multi(ms)
			return
		}

		if isDatePart(s) {
			r.datePart(s)
			return
		}

		tag := goquery.NodeName(s)
		switch tag {
		case "input":
			r.input(s)
		case "textarea":
			r.add(s, entity.KindTextarea, strings.TrimSpace(s.Text()))
		case "select":
			r.nativeSelect(s)
		default:
			r.listbox(s)
		}
	})
}

func (r *read) input(s *goquery.Selection) {
	typ := strings.ToLower(attr(s, "type"))
	switch typ {
	case "hidden", "submit", "reset", "button", "image":
		return
	case "radio":
		r.radio(s)
		return
	}

	if r.lastListboxLabel != "" {
		mirror := cleanLabel(r.label(s)) == r.lastListboxLabel
		r.lastListboxLabel = ""
		if mirror {
			return
		}
	}

	switch typ {
	case "checkbox":
		f := r.descriptor(s, entity.KindCheckbox)
		f.Checked = hasAttr(s, "checked") || attr(s, "aria-checked") == "true"
		f.Current = fmt.Sprintf("%t", f.Checked)
		r.push(f)
	case "file":
		r.add(s, entity.KindFile, "")
	case "date", "month":
		r.add(s, entity.KindDate, attr(s, "value"))
	case "range", "color":
		r.add(s, entity.KindUnknown, attr(s, "value"))
	default:
		f := r.descriptor(s, entity.KindText)
		f.Current = attr(s, "value")
		if typ == "password" || containsFold(attr(s, "name"), "password") || containsFold(attr(s, "data-automation-id"), "password") {
			f.Sensitive = true
		}
		r.push(f)
	}
}

func (r *read) radio(s *goquery.Selection) {
	name := attr(s, "name")
	if name != "" && r.radios[name] {
		return
	}

	group := s
	if name != "" {
		r.radios[name] = true
		group = r.doc.Find(`input[type="radio"]`).FilterFunction(func(_ int, o *goquery.Selection) bool {
			return attr(o, "name") == name
		})
	}

	f := r.descriptor(s, entity.KindRadio)
	f.Label, f.Required = r.groupLabel(s)
	if name != "" {
		f.ID = "radio:" + name
		f.Name = name
	}

	group.Each(func(_ int, o *goquery.Selection) {
		label := cleanLabel(r.ownLabel(o))
		value := attr(o, "value")
		if value == "" || value == "on" {
			value = label
		}
		if label == "" {
			label = value
		}
		f.Options = append(f.Options, entity.Option{Label: label, Value: value})
		if hasAttr(o, "checked") || attr(o, "aria-checked") == "true" {
			f.Current = value
		}
		if hasAttr(o, "required") || attr(o, "aria-required") == "true" {
			f.Required = true
		}
		r.consumed[o.Get(0)] = true
	})

	r.push(f)
}

func (r *read) nativeSelect(s *goquery.Selection) {
	kind := entity.KindSingleSelect
	if hasAttr(s, "multiple") {
		kind = entity.KindMultiSelect
	}

	f := r.descriptor(s, kind)
	var selected []string
	s.Find("option").Each(func(_ int, o *goquery.Selection) {
		label := collapse(o.Text())
		value, ok := o.Attr("value")
		if !ok {
			value = label
		}
		if value == "" || placeholder.MatchString(label) {
			return
		}
		f.Options = append(f.Options, entity.Option{Label: label, Value: value})
		if hasAttr(o, "selected") {
			selected = append(selected, value)
		}
	})
	f.Current = strings.Join(selected, ", ")
	if len(f.Options) == 0 {
		f.Kind = entity.KindUnknown
	}
	r.push(f)
}

func (r *read) listbox(s *goquery.Selection) {
	f := r.descriptor(s, entity.KindSingleSelect)
	if options, ok := r.snap.Popups[refOf(s)]; ok && len(options) > 0 {
		f.Options = append([]entity.Option(nil), options...)
	} else {
		f.Kind = entity.KindUnknown
	}

	current := collapse(s.Text())
	if !placeholder.MatchString(current) {
		f.Current = current
	}
	r.push(f)
	r.lastListboxLabel = f.Label
}

func (r *read) multi(container *goquery.Selection) {
	node := container.Get(0)
	if r.consumed[node] {
		return
	}
	r.consumed[node] = true

	input := container.Find("input[" + RefAttr + "]").First()
	if input.Length() == 0 {
		input = container.Find("input").First()
	}
	if input.Length() == 0 {
		input = container
	}

	f := r.descriptor(input, entity.KindMultiSelect)
	if f.Label == "" {
		f.Label, f.Required = r.containerLabel(container)
	}
	if options, ok := r.snap.Popups[refOf(input)]; ok && len(options) > 0 {
		f.Options = append([]entity.Option(nil), options...)
	} else {
		f.Tagged = true
	}

	var tags []string
	container.Find(tagSelector).Each(func(_ int, t *goquery.Selection) {
		if text := collapse(t.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	f.Current = strings.Join(tags, ", ")
	r.push(f)
}

func (r *read) datePart(s *goquery.Selection) {
	container := s.Closest(formFieldSelector)
	if container.Length() == 0 {
		container = s.Parent()
	}
	node := container.Get(0)
	if r.consumed[node] {
		return
	}
	r.consumed[node] = true

	f := r.descriptor(s, entity.KindDate)
	f.Label, f.Required = r.containerLabel(container)
	if f.Label == "" {
		f.Label = cleanLabel(r.label(s))
	}
	f.AutomationID = attr(container, "data-automation-id")
	if f.ID == "" {
		f.ID = f.AutomationID
	}

	var current []string
	container.Find("input").Each(func(_ int, p *goquery.Selection) {
		id := attr(p, "data-automation-id")
		ref := selectorFor(p)
		switch {
		case strings.Contains(id, "dateSectionMonth"):
			f.DateParts.Month = ref
		case strings.Contains(id, "dateSectionDay"):
			f.DateParts.Day = ref
		case strings.Contains(id, "dateSectionYear"):
			f.DateParts.Year = ref
		default:
			return
		}
		if v := attr(p, "value"); v != "" {
			current = append(current, v)
		}
		if hasAttr(p, "required") || attr(p, "aria-required") == "true" {
			f.Required = true
		}
		r.consumed[p.Get(0)] = true
	})
	f.Current = strings.Join(current, "/")
	r.push(f)
}

func (r *read) add(s *goquery.Selection, kind entity.FieldKind, current string) {
	f := r.descriptor(s, kind)
	f.Current = current
	r.push(f)
}

func (r *read) push(f entity.FieldDescriptor) {
	if f.Ref == "" && f.DateParts.Empty() {
		f.Kind = entity.KindUnknown
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("field-%04d", len(r.fields)+1)
	}
	r.lastListboxLabel = ""
	r.fields = append(r.fields, f)
}

func (r *read) descriptor(s *goquery.Selection, kind entity.FieldKind) entity.FieldDescriptor {
	raw := r.label(s)
	ref := selectorFor(s)

	automationID := attr(s, "data-automation-id")
	if ff := s.Closest(formFieldSelector); ff.Length() > 0 {
		automationID = attr(ff, "data-automation-id")
	}

	return entity.FieldDescriptor{
		ID:           refOf(s),
		Ref:          ref,
		ReadID:       r.snap.ReadID,
		Name:         attr(s, "name"),
		Label:        cleanLabel(raw),
		Kind:         kind,
		Required:     isRequired(s, raw),
		AutomationID: automationID,
	}
}

// label resolves the text describing s: explicit label, wrapping label,
// form-field container label, aria-labelledby, aria-label, fieldset
// legend, then placeholder and title.
func (r *read) label(s *goquery.Selection) string {
	if text := r.ownLabel(s); text != "" {
		return text
	}
	if ff := s.Closest(formFieldSelector); ff.Length() > 0 {
		if text := collapse(ff.Find("label, legend").First().Text()); text != "" {
			return text
		}
	}
	if ids := attr(s, "aria-labelledby"); ids != "" {
		if text := r.textOfIDs(ids); text != "" {
			return text
		}
	}
	if text := attr(s, "aria-label"); text != "" {
		return text
	}
	if fs := s.Closest("fieldset"); fs.Length() > 0 {
		if text := collapse(fs.ChildrenFiltered("legend").Text()); text != "" {
			return text
		}
	}
	if text := attr(s, "placeholder"); text != "" {
		return text
	}
	return attr(s, "title")
}

// ownLabel covers labels bound to s alone: label[for] and a wrapping label.
func (r *read) ownLabel(s *goquery.Selection) string {
	if id := attr(s, "id"); id != "" {
		if text := collapse(r.labelFor[id]); text != "" {
			return text
		}
	}
	if l := s.Closest("label"); l.Length() > 0 {
		if text := collapse(l.Text()); text != "" {
			return text
		}
	}
	if next := s.Next(); next.Length() > 0 && goquery.NodeName(next) == "label" && !hasAttr(next, "for") {
		return collapse(next.Text())
	}
	return ""
}

func (r *read) groupLabel(s *goquery.Selection) (string, bool) {
	if rg := s.Closest(`[role="radiogroup"]`); rg.Length() > 0 {
		if ids := attr(rg, "aria-labelledby"); ids != "" {
			if raw := r.textOfIDs(ids); raw != "" {
				return cleanLabel(raw), isRequired(rg, raw)
			}
		}
		if raw := attr(rg, "aria-label"); raw != "" {
			return cleanLabel(raw), isRequired(rg, raw)
		}
	}
	if fs := s.Closest("fieldset"); fs.Length() > 0 {
		if raw := collapse(fs.ChildrenFiltered("legend").Text()); raw != "" {
			return cleanLabel(raw), isRequired(fs, raw)
		}
	}
	if ff := s.Closest(formFieldSelector); ff.Length() > 0 {
		return r.containerLabel(ff)
	}
	return attr(s, "name"), isRequired(s, "")
}

func (r *read) containerLabel(container *goquery.Selection) (string, bool) {
	raw := collapse(container.Find("label, legend").First().Text())
	if raw == "" {
		raw = attr(container, "aria-label")
	}
	return cleanLabel(raw), strings.Contains(raw, "*") || attr(container, "aria-required") == "true"
}

func (r *read) textOfIDs(ids string) string {
	var parts []string
	for _, id := range strings.Fields(ids) {
		if s, ok := r.byID[id]; ok {
			if text := collapse(s.Text()); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

func isDatePart(s *goquery.Selection) bool {
	return strings.Contains(attr(s, "data-automation-id"), "dateSection")
}

func isRequired(s *goquery.Selection, rawLabel string) bool {
	return hasAttr(s, "required") ||
		attr(s, "aria-required") == "true" ||
		strings.Contains(rawLabel, "*")
}

// selectorFor builds the selector the action executor uses to find s again.
func selectorFor(s *goquery.Selection) string {
	if ref := refOf(s); ref != "" {
		return fmt.Sprintf(`[%s="%s"]`, RefAttr, ref)
	}
	if id := attr(s, "id"); cssIdent.MatchString(id) {
		return "#" + id
	}
	if name := attr(s, "name"); name != "" && !strings.Contains(name, `"`) {
		return fmt.Sprintf(`%s[name="%s"]`, goquery.NodeName(s), name)
	}
	return ""
}

func refOf(s *goquery.Selection) string {
	return attr(s, RefAttr)
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func hasAttr(s *goquery.Selection, name string) bool {
	_, ok := s.Attr(name)
	return ok
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func cleanLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	s = collapse(s)
	return strings.TrimSpace(strings.TrimSuffix(s, ":"))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
