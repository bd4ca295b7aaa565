package resolver

import (
	"strings"
	"time"

	"apply-agent/internal/domain/entity"
)

// answer is what a deterministic rule reads from the profile.
type answer struct {
	values []string
	date   *entity.DateValue
	// settled marks an intentional non-answer that must not count as a
	// missing required value, e.g. the end date of a current position.
	settled bool
	note    string
}

type lookup struct {
	profile *entity.UserProfile
	panel   int
	field   entity.FieldDescriptor
	now     time.Time
	exists  func(string) bool
}

// rule maps label keys to a profile value. A key starting with "=" must
// equal the whole normalized label; other keys match whole words inside it.
type rule struct {
	keys       []string
	automation []string
	kinds      []entity.FieldKind
	get        func(in lookup) (answer, bool)
}

func (r rule) accepts(kind entity.FieldKind) bool {
	if len(r.kinds) == 0 {
		return kind != entity.KindDate && kind != entity.KindFile
	}
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func text(get func(in lookup) string) func(in lookup) (answer, bool) {
	return func(in lookup) (answer, bool) {
		v := strings.TrimSpace(get(in))
		if v == "" {
			return answer{}, false
		}
		return answer{values: []string{v}}, true
	}
}

func fixed(v string) func(in lookup) (answer, bool) {
	return func(lookup) (answer, bool) {
		return answer{values: []string{v}}, true
	}
}

func work(in lookup) (entity.WorkExperience, bool) {
	if in.panel < 0 || in.panel >= len(in.profile.WorkExperience) {
		return entity.WorkExperience{}, false
	}
	return in.profile.WorkExperience[in.panel], true
}

func school(in lookup) (entity.EducationEntry, bool) {
	if in.panel < 0 || in.panel >= len(in.profile.Education) {
		return entity.EducationEntry{}, false
	}
	return in.profile.Education[in.panel], true
}

func spoken(in lookup) (entity.LanguageEntry, bool) {
	if in.panel < 0 || in.panel >= len(in.profile.FluentLanguages) {
		return entity.LanguageEntry{}, false
	}
	return in.profile.FluentLanguages[in.panel], true
}

func workText(get func(w entity.WorkExperience) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string {
		w, ok := work(in)
		if !ok {
			return ""
		}
		return get(w)
	})
}

func schoolText(get func(e entity.EducationEntry) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string {
		e, ok := school(in)
		if !ok {
			return ""
		}
		return get(e)
	})
}

func languageText(get func(l entity.LanguageEntry) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string {
		l, ok := spoken(in)
		if !ok {
			return ""
		}
		return get(l)
	})
}

func fluent(in lookup) (answer, bool) {
	l, ok := spoken(in)
	if !ok {
		return answer{}, false
	}
	return answer{values: []string{boolValue(l.Fluent)}}, true
}

// proficiency falls back to "Fluent" for fluent entries without a level;
// when no option carries that name the field goes to the oracle.
func proficiency(l entity.LanguageEntry) string {
	if l.Proficiency == "" && l.Fluent {
		return "Fluent"
	}
	return l.Proficiency
}

func workRange(in lookup) (entity.DateRange, bool) {
	w, ok := work(in)
	if !ok || w.Duration == "" {
		return entity.DateRange{}, false
	}
	r, err := entity.ParseDuration(w.Duration)
	if err != nil {
		return entity.DateRange{}, false
	}
	return r, true
}

func startDate(in lookup) (answer, bool) {
	r, ok := workRange(in)
	if !ok {
		return answer{}, false
	}
	d := r.Start.WithDefaultMonth(1)
	return answer{date: &d}, true
}

func endDate(in lookup) (answer, bool) {
	r, ok := workRange(in)
	if !ok || r.End.IsZero() {
		return answer{}, false
	}
	if r.End.Present {
		return answer{settled: true, note: "current position has no end date"}, true
	}
	d := r.End.WithDefaultMonth(12)
	return answer{date: &d}, true
}

func currentlyWorkHere(in lookup) (answer, bool) {
	r, ok := workRange(in)
	if !ok {
		return answer{}, false
	}
	return answer{values: []string{boolValue(r.Current())}}, true
}

func graduation(in lookup) (answer, bool) {
	e, ok := school(in)
	if !ok || e.Graduation() == "" {
		return answer{}, false
	}
	d, err := entity.ParseDate(e.Graduation())
	if err != nil || d.Present {
		return answer{}, false
	}
	d = d.WithDefaultMonth(5)
	return answer{date: &d}, true
}

func today(in lookup) (answer, bool) {
	d := entity.DateValue{Year: in.now.Year(), Month: int(in.now.Month()), Day: in.now.Day()}
	return answer{date: &d}, true
}

func resume(in lookup) (answer, bool) {
	path := strings.TrimSpace(in.profile.Documents.ResumePath)
	if path == "" {
		return answer{}, false
	}
	if !in.exists(path) {
		return answer{settled: false, note: "resume file " + path + " does not exist"}, false
	}
	return answer{values: []string{path}}, true
}

func skills(in lookup) (answer, bool) {
	list := in.profile.Skills()
	if len(list) == 0 {
		return answer{}, false
	}
	return answer{values: list}, true
}

// disabilityAnswer reduces the free-text disability status to yes, no or
// decline. An empty status reads as no.
func disabilityAnswer(status string) string {
	s := normalize(status)
	for _, marker := range declineMarkers {
		if strings.Contains(s, normalize(marker)) {
			return "decline"
		}
	}
	switch {
	case strings.Contains(s, "not want"):
		return "decline"
	case s == "" || s == "no" || strings.HasPrefix(s, "no ") || strings.Contains(s, "do not have"):
		return "no"
	case s == "yes" || strings.HasPrefix(s, "yes ") || strings.Contains(s, "have a disability"):
		return "yes"
	default:
		return "no"
	}
}

func disability(want string) func(in lookup) (answer, bool) {
	return func(in lookup) (answer, bool) {
		got := disabilityAnswer(in.profile.VoluntaryDisclosures.DisabilityStatus)
		return answer{values: []string{boolValue(got == want)}}, true
	}
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var (
	checkbox = []entity.FieldKind{entity.KindCheckbox}
	date     = []entity.FieldKind{entity.KindDate}
	file     = []entity.FieldKind{entity.KindFile}
	multi    = []entity.FieldKind{entity.KindMultiSelect}
)

func personal(get func(p entity.PersonalInformation) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string { return get(in.profile.PersonalInformation) })
}

func address(get func(a entity.Address) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string { return get(in.profile.PersonalInformation.Address) })
}

func disclosure(get func(v entity.VoluntaryDisclosures) string) func(in lookup) (answer, bool) {
	return text(func(in lookup) string { return get(in.profile.VoluntaryDisclosures) })
}

var (
	email    = personal(func(p entity.PersonalInformation) string { return p.Email })
	password = personal(func(p entity.PersonalInformation) string { return p.Password })
)

// tables holds the deterministic label mapping of each section. Sections
// not listed have no deterministic answers.
var tables = map[entity.State][]rule{
	entity.StateAuth: {
		{keys: []string{"email", "email address"}, automation: []string{"email"}, get: email},
		{keys: []string{"password", "verify password", "verify new password", "confirm password"}, automation: []string{"password"}, get: password},
		{keys: []string{"create account", "i agree", "accept terms"}, automation: []string{"createaccountcheckbox"}, kinds: checkbox, get: fixed("true")},
	},
	entity.StatePersonalInfo: {
		{keys: []string{"given name", "given names", "first name"}, get: personal(func(p entity.PersonalInformation) string { return p.FirstName })},
		{keys: []string{"middle name"}, get: personal(func(p entity.PersonalInformation) string { return p.MiddleName })},
		{keys: []string{"family name", "last name", "surname"}, get: personal(func(p entity.PersonalInformation) string { return p.LastName })},
		{keys: []string{"email", "email address"}, get: email},
		{keys: []string{"phone number", "phone", "mobile number"}, get: personal(func(p entity.PersonalInformation) string { return p.Phone })},
		{keys: []string{"extension", "phone extension"}, get: personal(func(p entity.PersonalInformation) string { return p.PhoneExtension })},
		{keys: []string{"phone device type"}, get: fixed("Mobile")},
		{keys: []string{"address line 1", "street", "street address"}, get: address(func(a entity.Address) string { return a.Street })},
		{keys: []string{"address line 2"}, get: address(func(a entity.Address) string { return a.Line2 })},
		{keys: []string{"city", "town"}, get: address(func(a entity.Address) string { return a.City })},
		{keys: []string{"postal code", "zip", "zip code", "zipcode"}, get: address(func(a entity.Address) string { return a.Zipcode })},
		{keys: []string{"state", "province", "region"}, get: address(func(a entity.Address) string { return a.State })},
		{keys: []string{"country", "country territory"}, get: address(func(a entity.Address) string { return a.Country })},
		{keys: []string{"linkedin", "linkedin profile"}, get: personal(func(p entity.PersonalInformation) string { return p.LinkedIn })},
		{keys: []string{"website", "portfolio"}, get: personal(func(p entity.PersonalInformation) string { return p.Website })},
		{keys: []string{"previously worked", "previously been employed", "former employee"}, get: fixed("No")},
	},
	entity.StateExperience: {
		{keys: []string{"job title", "position", "title"}, get: workText(entity.WorkExperience.JobTitle)},
		{keys: []string{"company", "employer", "company name"}, get: workText(func(w entity.WorkExperience) string { return w.Company })},
		{keys: []string{"location"}, get: workText(func(w entity.WorkExperience) string { return w.Location })},
		{keys: []string{"role description", "description", "responsibilities"}, get: workText(entity.WorkExperience.Description)},
		{keys: []string{"currently work here", "current position", "current job"}, automation: []string{"currentlyworkhere"}, kinds: checkbox, get: currentlyWorkHere},
		{keys: []string{"=from", "start date", "from date"}, automation: []string{"startdate"}, kinds: date, get: startDate},
		{keys: []string{"=to", "end date", "to date"}, automation: []string{"enddate"}, kinds: date, get: endDate},
	},
	entity.StateEducation: {
		{keys: []string{"school", "university", "institution", "college", "school or university"}, get: schoolText(func(e entity.EducationEntry) string { return e.Institution })},
		{keys: []string{"degree"}, get: schoolText(func(e entity.EducationEntry) string { return e.Degree })},
		{keys: []string{"field of study", "major", "discipline"}, get: schoolText(entity.EducationEntry.Field)},
		{keys: []string{"graduation", "graduation date", "=to", "end date", "actual or expected"}, automation: []string{"graduationdate", "enddate"}, kinds: date, get: graduation},
	},
	entity.StateSkills: {
		{keys: []string{"skills", "add skills", "type to add skills"}, automation: []string{"skills"}, kinds: multi, get: skills},
	},
	entity.StateLanguages: {
		{keys: []string{"language"}, get: languageText(func(l entity.LanguageEntry) string { return l.Language })},
		{keys: []string{"fluent", "i am fluent in this language"}, kinds: checkbox, get: fluent},
		{keys: []string{"proficiency", "reading", "speaking", "writing", "comprehension", "overall"}, get: languageText(proficiency)},
	},
	entity.StateQuestions: {
		{keys: []string{"authorized to work", "legally authorized", "work authorization"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.WorkAuthorization })},
		{keys: []string{"sponsorship", "require sponsorship", "visa sponsorship"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.RequiresSponsorship })},
		{keys: []string{"previously worked", "previously been employed", "former employee"}, get: fixed("No")},
	},
	entity.StateDisclosures: disclosureRules,
	entity.StateSelfIdentify: append([]rule{
		{keys: []string{"yes i have a disability"}, kinds: checkbox, get: disability("yes")},
		{keys: []string{"do not have a disability"}, kinds: checkbox, get: disability("no")},
		{keys: []string{"do not want to answer"}, kinds: checkbox, get: disability("decline")},
	}, disclosureRules...),
	entity.StateResume: {
		{keys: []string{"resume", "cv", "upload", "attach", "select files"}, automation: []string{"file-upload", "resume"}, kinds: file, get: resume},
		{keys: []string{"linkedin"}, get: personal(func(p entity.PersonalInformation) string { return p.LinkedIn })},
		{keys: []string{"website", "portfolio"}, get: personal(func(p entity.PersonalInformation) string { return p.Website })},
	},
}

// disclosureRules serve both the voluntary disclosure page and the self
// identification form.
var disclosureRules = []rule{
	{keys: []string{"gender", "sex"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.Gender })},
	{keys: []string{"ethnicity", "race", "hispanic or latino"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.Ethnicity })},
	{keys: []string{"veteran", "veteran status", "protected veteran"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.VeteranStatus })},
	{keys: []string{"disability", "disability status"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.DisabilityStatus })},
	{keys: []string{"authorized to work", "legally authorized", "work authorization"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.WorkAuthorization })},
	{keys: []string{"sponsorship", "require sponsorship", "visa sponsorship"}, get: disclosure(func(v entity.VoluntaryDisclosures) string { return v.RequiresSponsorship })},
	{keys: []string{"=name", "full name", "your name"}, get: text(func(in lookup) string { return in.profile.FullName() })},
	{keys: []string{"date signed", "today's date", "todays date", "=date"}, automation: []string{"datesignedon"}, kinds: date, get: today},
	{keys: []string{"i consent", "i have read", "acknowledge", "terms and conditions", "i agree"}, kinds: checkbox, get: fixed("true")},
}

// declineMarkers identify the opt-out choice of a disclosure question.
var declineMarkers = []string{
	"prefer not",
	"decline",
	"do not wish",
	"don't wish",
	"choose not",
	"not to disclose",
	"not to answer",
	"i don't want to answer",
}
