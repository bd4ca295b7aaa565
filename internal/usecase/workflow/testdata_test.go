package workflow

import (
	"fmt"

	"apply-agent/internal/domain/entity"
)

func testSite() entity.SiteConfig {
	return entity.SiteConfig{
		Name: "acme",
		URL:  "https://acme.example/apply",
		Auth: entity.AuthSpec{
			SignIn: entity.AuthFlow{
				Entry:   "#sign-in",
				Form:    "#auth-form",
				Submit:  "#auth-submit",
				Error:   "#auth-error",
				Success: "#home",
			},
		},
		Sections: []entity.SectionSpec{
			{Name: entity.StateAuth, Selector: "#auth-form"},
			{Name: entity.StatePersonalInfo, Selector: "#info", NextButton: "#next", AllowOracle: true},
			{
				Name:          entity.StateExperience,
				Selector:      "#work",
				PanelSelector: "#work-%d",
				AddButton:     "#work-add",
				Repeat:        entity.RepeatPerEntry,
				NextButton:    "#next",
			},
			{
				Name:          entity.StateEducation,
				Selector:      "#edu",
				PanelSelector: "#edu-%d",
				AddButton:     "#edu-add",
				Repeat:        entity.RepeatPerEntry,
				NextButton:    "#next",
			},
			{Name: entity.StateSkills, Selector: "#skills", NextButton: "#next"},
			{Name: entity.StateDisclosures, Selector: "#vol", NextButton: "#next", AllowOracle: true},
			{Name: entity.StateReview, Selector: "#review"},
		},
		SubmitButton: "#submit",
		MaxSkills:    10,
	}
}

func testProfile() *entity.UserProfile {
	return &entity.UserProfile{
		PersonalInformation: entity.PersonalInformation{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Password:  "s3cret",
		},
		WorkExperience: []entity.WorkExperience{
			{Company: "Acme", Position: "Engineer", Duration: "Jan 2020 - Present"},
			{Company: "Globex", Position: "Developer", Duration: "2017 - 2019"},
			{Company: "Initech", Title: "Intern", Duration: "2016"},
		},
		Education: []entity.EducationEntry{
			{Institution: "State University", Degree: "BSc"},
			{Institution: "Tech Institute", Degree: "MSc"},
		},
	}
}

const authForm = `
<form id="auth-form">
  <label for="em">Email Address*</label>
  <input id="em" type="text" data-fp-ref="a-email">
  <label for="pw">Password*</label>
  <input id="pw" type="password" data-fp-ref="a-pass">
</form>`

const infoSection = `
<div id="info">
  <label for="fn">First Name*</label><input id="fn" data-fp-ref="i-first">
  <label for="ln">Last Name*</label><input id="ln" data-fp-ref="i-last">
  <fieldset>
    <legend>Are you at least 18 years old?*</legend>
    <input type="radio" id="adult-yes" name="adult" value="yes" data-fp-ref="adult-yes"><label for="adult-yes">Yes</label>
    <input type="radio" id="adult-no" name="adult" value="no" data-fp-ref="adult-no"><label for="adult-no">No</label>
  </fieldset>
</div>`

const infoSectionNoRadio = `
<div id="info">
  <label for="fn">First Name*</label><input id="fn" data-fp-ref="i-first">
  <label for="ln">Last Name*</label><input id="ln" data-fp-ref="i-last">
</div>`

const infoSectionFilled = `
<div id="info">
  <label for="fn">First Name*</label><input id="fn" value="Jane" data-fp-ref="i-first">
  <label for="ln">Last Name*</label><input id="ln" value="Doe" data-fp-ref="i-last">
</div>`

const skillsSection = `
<div id="skills">
  <div data-automation-id="formField-skills">
    <label>Type to Add Skills</label>
    <div data-automation-id="multiSelectContainer">
      <input data-fp-ref="sk-input">
    </div>
  </div>
</div>`

const disclosureSection = `
<div id="vol">
  <label for="gender">Gender</label>
  <select id="gender" data-fp-ref="v-gender">
    <option value="">Select One</option>
    <option value="m">Male</option>
    <option value="f">Female</option>
    <option value="x">I decline to self-identify</option>
  </select>
</div>`

const languagePanel = `
<div id="lang-1">
  <label for="ln1">Language*</label><input id="ln1" data-fp-ref="l1-name">
  <input type="checkbox" id="fl1" data-fp-ref="l1-fluent"><label for="fl1">I am fluent in this language</label>
</div>`

const questionsSection = `
<div id="questions">
  <label for="why">Why do you want to join?*</label>
  <textarea id="why" data-fp-ref="q-why"></textarea>
</div>`

const selfIdentifySection = `
<div id="self">
  <input type="checkbox" id="dn" data-fp-ref="d-no"><label for="dn">No, I do not have a disability and have not had one in the past</label>
  <input type="checkbox" id="dy" data-fp-ref="d-yes"><label for="dy">Yes, I have a disability (or previously had a disability)</label>
</div>`

func workPanel(i int) string {
	return fmt.Sprintf(`
<div id="work-%[1]d">
  <label for="jt%[1]d">Job Title*</label><input id="jt%[1]d" data-fp-ref="w%[1]d-title">
  <label for="co%[1]d">Company*</label><input id="co%[1]d" data-fp-ref="w%[1]d-company">
</div>`, i)
}

func eduPanel(i int) string {
	return fmt.Sprintf(`
<div id="edu-%[1]d">
  <label for="sc%[1]d">School or University*</label><input id="sc%[1]d" data-fp-ref="e%[1]d-school">
  <label for="dg%[1]d">Degree</label><input id="dg%[1]d" data-fp-ref="e%[1]d-degree">
</div>`, i)
}
