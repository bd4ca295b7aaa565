package extractor

import (
	"testing"

	"apply-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, html string, popups map[string][]entity.Option) []entity.FieldDescriptor {
	t.Helper()
	fields, err := New(nil).Extract(&entity.SectionSnapshot{
		ReadID:  "read-1",
		Locator: "#section",
		HTML:    html,
		Popups:  popups,
	})
	require.NoError(t, err)
	return fields
}

func TestExtract_PersonalInfoPage(t *testing.T) {
	fields := extract(t, personalInfoHTML, map[string][]entity.Option{
		"fp-0003": {
			{Label: "United States of America", Value: "United States of America"},
			{Label: "Canada", Value: "Canada"},
		},
	})

	require.Len(t, fields, 6)

	assert.Equal(t, "Given Name(s)", fields[0].Label)
	assert.Equal(t, entity.KindText, fields[0].Kind)
	assert.True(t, fields[0].Required)
	assert.Equal(t, `[data-fp-ref="fp-0001"]`, fields[0].Ref)
	assert.Equal(t, "read-1", fields[0].ReadID)

	assert.Equal(t, "Family Name", fields[1].Label)
	assert.Equal(t, "Doe", fields[1].Current)
	assert.False(t, fields[1].Required)

	assert.Equal(t, "Country", fields[2].Label)
	assert.Equal(t, entity.KindSingleSelect, fields[2].Kind)
	assert.Len(t, fields[2].Options, 2)
	assert.Empty(t, fields[2].Current, "placeholder text is not a value")

	assert.Equal(t, "Have you previously worked here?", fields[3].Label)
	assert.Equal(t, entity.KindRadio, fields[3].Kind)
	assert.True(t, fields[3].Required)
	assert.Equal(t, []entity.Option{{Label: "Yes", Value: "true"}, {Label: "No", Value: "false"}}, fields[3].Options)

	assert.Equal(t, "I agree to receive text messages", fields[4].Label)
	assert.Equal(t, entity.KindCheckbox, fields[4].Kind)
	assert.Equal(t, "false", fields[4].Current)

	assert.Equal(t, "How did you hear about us?", fields[5].Label)
	assert.Equal(t, entity.KindTextarea, fields[5].Kind)
}

func TestExtract_LabelFallbackChain(t *testing.T) {
	html := `
<div id="section">
  <span id="lbl-city">City</span>
  <input data-fp-ref="fp-1" aria-labelledby="lbl-city">
  <input data-fp-ref="fp-2" aria-label="Postal Code">
  <input data-fp-ref="fp-3" placeholder="Phone Extension">
  <fieldset><legend>Middle Name</legend><input data-fp-ref="fp-4"></fieldset>
  <label>Address Line 1 <input data-fp-ref="fp-5"></label>
</div>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 5)

	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"City", "Postal Code", "Phone Extension", "Middle Name", "Address Line 1"}, labels)
}

func TestExtract_RequiredMarkers(t *testing.T) {
	html := `
<div>
  <label for="a">Email*</label><input id="a" data-fp-ref="fp-1">
  <label for="b">Phone</label><input id="b" data-fp-ref="fp-2" required>
  <label for="c">Street</label><input id="c" data-fp-ref="fp-3" aria-required="true">
  <label for="d">Website</label><input id="d" data-fp-ref="fp-4">
</div>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 4)

	assert.Equal(t, "Email", fields[0].Label)
	assert.True(t, fields[0].Required)
	assert.True(t, fields[1].Required)
	assert.True(t, fields[2].Required)
	assert.False(t, fields[3].Required)
}

func TestExtract_WorkExperiencePanelDates(t *testing.T) {
	fields := extract(t, experiencePanelHTML, nil)
	require.Len(t, fields, 5)

	assert.Equal(t, "Job Title", fields[0].Label)
	assert.Equal(t, "Company", fields[1].Label)

	assert.Equal(t, "I currently work here", fields[2].Label)
	assert.Equal(t, entity.KindCheckbox, fields[2].Kind)

	from := fields[3]
	assert.Equal(t, entity.KindDate, from.Kind)
	assert.Equal(t, "From", from.Label)
	assert.True(t, from.Required)
	assert.Equal(t, "formField-startDate", from.AutomationID)
	assert.Equal(t, `[data-fp-ref="fp-0013"]`, from.DateParts.Month)
	assert.Equal(t, `[data-fp-ref="fp-0014"]`, from.DateParts.Year)
	assert.Empty(t, from.DateParts.Day)

	to := fields[4]
	assert.Equal(t, "To", to.Label)
	assert.Equal(t, "formField-endDate", to.AutomationID)
	assert.Equal(t, "12/2021", to.Current)
}

func TestExtract_MultiSelectTagInput(t *testing.T) {
	html := `
<div data-automation-id="formField-skills">
  <label>Type to Add Skills</label>
  <div data-automation-id="multiSelectContainer">
    <ul><li data-automation-id="selectedItem">Go</li></ul>
    <input data-fp-ref="fp-0020" placeholder="Search" data-automation-id="searchBox">
  </div>
</div>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 1)

	f := fields[0]
	assert.Equal(t, entity.KindMultiSelect, f.Kind)
	assert.Equal(t, "Type to Add Skills", f.Label)
	assert.True(t, f.Tagged)
	assert.Equal(t, "Go", f.Current)
	assert.Equal(t, `[data-fp-ref="fp-0020"]`, f.Ref)
}

func TestExtract_NativeSelect(t *testing.T) {
	html := `
<label for="deg">Degree</label>
<select id="deg" data-fp-ref="fp-1">
  <option value="">Select One</option>
  <option value="BS">Bachelor of Science</option>
  <option value="MS" selected>Master of Science</option>
</select>
<label for="langs">Languages</label>
<select id="langs" data-fp-ref="fp-2" multiple>
  <option>English</option>
  <option>German</option>
</select>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 2)

	assert.Equal(t, entity.KindSingleSelect, fields[0].Kind)
	assert.Equal(t, []entity.Option{
		{Label: "Bachelor of Science", Value: "BS"},
		{Label: "Master of Science", Value: "MS"},
	}, fields[0].Options)
	assert.Equal(t, "MS", fields[0].Current)

	assert.Equal(t, entity.KindMultiSelect, fields[1].Kind)
	assert.False(t, fields[1].Tagged)
	assert.Equal(t, []string{"English", "German"}, fields[1].OptionValues())
}

func TestExtract_UnsupportedShapesAreKept(t *testing.T) {
	html := `
<div>
  <label for="r">Years of experience</label><input id="r" type="range" data-fp-ref="fp-1">
  <button aria-haspopup="listbox" data-fp-ref="fp-2" aria-label="State">Select One</button>
  <input type="hidden" data-fp-ref="fp-3" name="token">
</div>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 2)

	assert.Equal(t, entity.KindUnknown, fields[0].Kind)
	assert.Equal(t, "Years of experience", fields[0].Label)
	assert.Equal(t, entity.KindUnknown, fields[1].Kind, "listbox without enumerated options")
	assert.Equal(t, "State", fields[1].Label)
}

func TestExtract_UntaggedControlsIgnoredInTaggedSnapshot(t *testing.T) {
	html := `
<div>
  <label for="a">Email</label><input id="a" data-fp-ref="fp-1">
  <input id="invisible" name="shadow">
</div>`

	fields := extract(t, html, nil)
	require.Len(t, fields, 1)
	assert.Equal(t, "Email", fields[0].Label)
}

func TestExtract_ListboxMirrorInputSuppressed(t *testing.T) {
	html := `
<div>
  <label for="src">How Did You Hear About Us?</label>
  <button id="src" aria-haspopup="listbox" data-fp-ref="fp-1">Select One</button>
  <input data-fp-ref="fp-2" aria-label="How Did You Hear About Us?">
  <label for="n">Phone Number</label><input id="n" data-fp-ref="fp-3">
</div>`

	fields := extract(t, html, map[string][]entity.Option{
		"fp-1": {{Label: "LinkedIn", Value: "LinkedIn"}},
	})
	require.Len(t, fields, 2)
	assert.Equal(t, "How Did You Hear About Us?", fields[0].Label)
	assert.Equal(t, "Phone Number", fields[1].Label)
}

func TestExtract_PasswordIsSensitive(t *testing.T) {
	fields := extract(t, authHTML, nil)
	require.Len(t, fields, 4)

	assert.False(t, fields[0].Sensitive)
	assert.True(t, fields[1].Sensitive)
	assert.True(t, fields[2].Sensitive)
	assert.Equal(t, entity.KindCheckbox, fields[3].Kind)
}

func TestExtract_OptionsAreCopies(t *testing.T) {
	popups := map[string][]entity.Option{"fp-1": {{Label: "A", Value: "A"}}}
	html := `<button aria-haspopup="listbox" data-fp-ref="fp-1" aria-label="Pick">Select One</button>`

	fields := extract(t, html, popups)
	require.Len(t, fields, 1)

	fields[0].Options[0].Value = "changed"
	assert.Equal(t, "A", popups["fp-1"][0].Value)
}

func TestExtract_NilSnapshot(t *testing.T) {
	_, err := New(nil).Extract(nil)
	assert.Error(t, err)
}
