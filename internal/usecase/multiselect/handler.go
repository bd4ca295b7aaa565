package multiselect

import (
	"context"
	"fmt"
	"strings"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
	"apply-agent/internal/usecase/recovery"
	"apply-agent/internal/usecase/resolver"
)

// ItemResult is the outcome of adding one list item.
type ItemResult struct {
	Item     string
	Outcome  entity.Outcome
	Attempts int
	Err      error
}

type Result struct {
	Decision entity.FillDecision
	Outcome  entity.Outcome
	Items    []ItemResult
	// Err is set only for failures that must stop the run.
	Err error
}

// Added counts items that ended up as tags.
func (r Result) Added() int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == entity.OutcomeFilled || it.Outcome == entity.OutcomeUnchanged {
			n++
		}
	}
	return n
}

// Handler fills multi-value controls one item at a time.
type Handler struct {
	resolver *resolver.Resolver
	recovery *recovery.Recovery
	exec     output.ActionExecutor
	logger   output.LoggerPort
}

func New(res *resolver.Resolver, rec *recovery.Recovery, exec output.ActionExecutor, logger output.LoggerPort) *Handler {
	return &Handler{
		resolver: res,
		recovery: rec,
		exec:     exec,
		logger:   logger,
	}
}

// Fill resolves the item list for field and adds each item. maxItems caps
// the list when positive. A failing item is skipped and recorded; the rest
// continue.
func (h *Handler) Fill(ctx context.Context, field entity.FieldDescriptor, scope resolver.Scope, maxItems int, reread recovery.Reread) Result {
	d, err := h.resolver.Resolve(ctx, field, scope)
	if err != nil {
		return Result{Decision: entity.NewDecision(field), Outcome: entity.OutcomeFailed, Err: err}
	}
	if d.Skipped() {
		return Result{Decision: d, Outcome: entity.OutcomeSkipped}
	}

	if !field.Tagged {
		res := h.recovery.Apply(ctx, d, field, reread)
		out := Result{Decision: res.Decision, Outcome: res.Outcome}
		if res.Fatal() {
			out.Err = res.Err
		}
		return out
	}

	items := Items(d.Values, maxItems)
	d.Values = items
	existing := tags(field.Current)

	result := Result{Decision: d}
	for _, item := range items {
		if existing[entity.NormalizeText(item)] {
			result.Items = append(result.Items, ItemResult{Item: item, Outcome: entity.OutcomeUnchanged})
			continue
		}

		var it ItemResult
		it, field = h.add(ctx, field, item, reread)
		result.Items = append(result.Items, it)
		if it.Err != nil && recovery.Classify(it.Err) == recovery.Fatal {
			result.Err = it.Err
			result.Outcome = entity.OutcomeFailed
			return result
		}
	}

	result.Outcome = outcome(result.Items)
	if result.Outcome == entity.OutcomeSkipped {
		result.Decision = d.Skip("no item could be added")
	}
	return result
}

// add types item and confirms its suggestion. Like Recovery.Apply, every
// retry acts on a fresh read of the field; the last read is returned so
// later items use it too.
func (h *Handler) add(ctx context.Context, field entity.FieldDescriptor, item string, reread recovery.Reread) (ItemResult, entity.FieldDescriptor) {
	tries := 0
	attempts, err := h.recovery.Do(ctx, "add item "+item, func(ctx context.Context) error {
		tries++
		if tries > 1 && reread != nil {
			fresh, err := reread(ctx)
			if err != nil {
				return err
			}
			field = fresh
		}

		if err := h.exec.Type(ctx, field.Ref, item); err != nil {
			return err
		}
		if err := h.exec.ConfirmSuggestion(ctx, field.Ref, item); err != nil {
			return err
		}
		ok, err := h.exec.HasTag(ctx, field.Ref, item)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %q", entity.ErrSuggestionAbsent, item)
		}
		return nil
	})

	if err != nil {
		if h.logger != nil {
			h.logger.Warn("Item skipped",
				"field", field.Label,
				"item", item,
				"attempts", attempts,
				"error", err.Error(),
			)
		}
		return ItemResult{Item: item, Outcome: entity.OutcomeSkipped, Attempts: attempts, Err: err}, field
	}
	return ItemResult{Item: item, Outcome: entity.OutcomeFilled, Attempts: attempts}, field
}

// Items returns values trimmed, without duplicates (case-insensitive) and
// capped at limit when limit is positive. Order is kept.
func Items(values []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := entity.NormalizeText(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func tags(current string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Split(current, ",") {
		if t = entity.NormalizeText(t); t != "" {
			out[t] = true
		}
	}
	return out
}

func outcome(items []ItemResult) entity.Outcome {
	filled, unchanged := 0, 0
	for _, it := range items {
		switch it.Outcome {
		case entity.OutcomeFilled:
			filled++
		case entity.OutcomeUnchanged:
			unchanged++
		case entity.OutcomeSkipped, entity.OutcomeFailed:
		}
	}
	switch {
	case filled > 0:
		return entity.OutcomeFilled
	case unchanged > 0:
		return entity.OutcomeUnchanged
	default:
		return entity.OutcomeSkipped
	}
}
