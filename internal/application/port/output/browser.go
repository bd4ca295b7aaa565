package output

import (
	"context"

	"apply-agent/internal/domain/entity"
)

// PagePort drives the live page at section granularity.
type PagePort interface {
	Open(ctx context.Context, url string) error
	// WaitSection blocks until locator is present or the wait times out,
	// returning false in the latter case.
	WaitSection(ctx context.Context, locator string) (bool, error)
	// Snapshot reads the container at locator, tagging its controls with
	// stable refs and enumerating listbox options.
	Snapshot(ctx context.Context, locator string) (*entity.SectionSnapshot, error)
	Visible(ctx context.Context, selector string) (bool, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}

// ActionExecutor performs single interactions against controls addressed
// by selector or field ref.
type ActionExecutor interface {
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	SelectOption(ctx context.Context, selector string, option entity.Option) error
	UploadFile(ctx context.Context, selector, path string) error
	// ConfirmSuggestion picks the suggestion matching text after typing
	// into a tag input.
	ConfirmSuggestion(ctx context.Context, selector, text string) error
	// HasTag reports whether a tag labelled text is present in the
	// container of the tag input.
	HasTag(ctx context.Context, selector, text string) (bool, error)
	Enabled(ctx context.Context, selector string) (bool, error)
}
