package entity

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// UserProfile is the applicant data loaded once per run. It is never mutated
// after loading and may be shared freely.
type UserProfile struct {
	PersonalInformation  PersonalInformation  `json:"personal_information"`
	WorkExperience       []WorkExperience     `json:"work_experience" validate:"dive"`
	Education            []EducationEntry     `json:"education" validate:"dive"`
	FluentLanguages      []LanguageEntry      `json:"fluent_languages"`
	TechnicalSkills      map[string][]string  `json:"technical_skills"`
	Documents            Documents            `json:"documents"`
	VoluntaryDisclosures VoluntaryDisclosures `json:"voluntary_disclosures"`
}

type PersonalInformation struct {
	FirstName        string           `json:"first_name" validate:"required"`
	MiddleName       string           `json:"middle_name"`
	LastName         string           `json:"last_name" validate:"required"`
	Email            string           `json:"email" validate:"required,email"`
	Phone            string           `json:"phone"`
	PhoneExtension   string           `json:"phone_extension"`
	Password         string           `json:"password"`
	LinkedIn         string           `json:"linkedin"`
	Website          string           `json:"website"`
	Address          Address          `json:"address"`
	ProfessionalInfo ProfessionalInfo `json:"professional_info"`
}

type Address struct {
	Street  string `json:"street"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type ProfessionalInfo struct {
	Skills []string `json:"skills"`
}

type WorkExperience struct {
	Company          string   `json:"company" validate:"required"`
	Position         string   `json:"position"`
	Title            string   `json:"title"`
	Location         string   `json:"location"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// JobTitle returns position, falling back to title.
func (w WorkExperience) JobTitle() string {
	if w.Position != "" {
		return w.Position
	}
	return w.Title
}

// Description joins responsibilities into one paragraph per line.
func (w WorkExperience) Description() string {
	return strings.Join(w.Responsibilities, "\n")
}

type EducationEntry struct {
	Institution    string   `json:"institution" validate:"required"`
	Degree         string   `json:"degree"`
	FieldOfStudy   string   `json:"field_of_study"`
	Major          string   `json:"major"`
	Location       string   `json:"location"`
	GraduationYear FlexYear `json:"graduation_year"`
	GraduationDate string   `json:"graduation_date"`
}

// Field returns the field of study, falling back to major.
func (e EducationEntry) Field() string {
	if e.FieldOfStudy != "" {
		return e.FieldOfStudy
	}
	return e.Major
}

// Graduation returns the raw graduation value, preferring the full date.
func (e EducationEntry) Graduation() string {
	if e.GraduationDate != "" {
		return e.GraduationDate
	}
	return string(e.GraduationYear)
}

// FlexYear accepts both `2019` and `"2019"` in profile JSON.
type FlexYear string

func (y *FlexYear) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*y = FlexYear(n.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*y = FlexYear(strings.TrimSpace(s))
	return nil
}

// Int returns the numeric year or 0.
func (y FlexYear) Int() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(y)))
	if err != nil {
		return 0
	}
	return n
}

// LanguageEntry is one spoken language. Profiles may list a bare name,
// which means fluent with no stated proficiency.
type LanguageEntry struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
	Fluent      bool   `json:"fluent"`
}

func (l *LanguageEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*l = LanguageEntry{Language: strings.TrimSpace(name), Fluent: true}
		return nil
	}

	var raw struct {
		Language    string `json:"language"`
		Proficiency string `json:"proficiency"`
		Fluent      *bool  `json:"fluent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LanguageEntry{
		Language:    strings.TrimSpace(raw.Language),
		Proficiency: strings.TrimSpace(raw.Proficiency),
		Fluent:      raw.Fluent == nil || *raw.Fluent,
	}
	return nil
}

type Documents struct {
	ResumePath string `json:"resume_path"`
}

type VoluntaryDisclosures struct {
	Gender              string `json:"gender"`
	Ethnicity           string `json:"ethnicity"`
	VeteranStatus       string `json:"veteran_status"`
	DisabilityStatus    string `json:"disability_status"`
	WorkAuthorization   string `json:"work_authorization"`
	RequiresSponsorship string `json:"requires_sponsorship"`
}

// Skills flattens every skill list in a stable order: professional skills
// first, then technical categories by name. Duplicates are dropped,
// comparing case-insensitively; the first spelling wins.
func (p *UserProfile) Skills() []string {
	seen := make(map[string]bool)
	var result []string

	add := func(items []string) {
		for _, item := range items {
			item = strings.TrimSpace(item)
			key := strings.ToLower(item)
			if item == "" || seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, item)
		}
	}

	add(p.PersonalInformation.ProfessionalInfo.Skills)

	categories := make([]string, 0, len(p.TechnicalSkills))
	for c := range p.TechnicalSkills {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		add(p.TechnicalSkills[c])
	}

	return result
}

// FullName joins first, middle and last name.
func (p *UserProfile) FullName() string {
	parts := []string{
		p.PersonalInformation.FirstName,
		p.PersonalInformation.MiddleName,
		p.PersonalInformation.LastName,
	}
	var kept []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
