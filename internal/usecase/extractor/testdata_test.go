package extractor

const personalInfoHTML = `
<div data-automation-id="applyFlowMyInfoPage">
  <div data-automation-id="formField-legalNameSection_firstName">
    <label for="name--legalName--firstName">Given Name(s)<abbr title="required">*</abbr></label>
    <input id="name--legalName--firstName" type="text" data-fp-ref="fp-0001">
  </div>
  <div data-automation-id="formField-legalNameSection_lastName">
    <label for="name--legalName--lastName">Family Name</label>
    <input id="name--legalName--lastName" type="text" value="Doe" data-fp-ref="fp-0002">
  </div>
  <div data-automation-id="formField-country">
    <label for="country--country">Country</label>
    <button id="country--country" aria-haspopup="listbox" data-fp-ref="fp-0003">Select One</button>
  </div>
  <fieldset data-automation-id="formField-candidateIsPreviousWorker">
    <legend><label>Have you previously worked here?<abbr>*</abbr></label></legend>
    <input type="radio" id="prev-yes" name="candidateIsPreviousWorker" value="true" data-fp-ref="fp-0004"><label for="prev-yes">Yes</label>
    <input type="radio" id="prev-no" name="candidateIsPreviousWorker" value="false" data-fp-ref="fp-0005"><label for="prev-no">No</label>
  </fieldset>
  <div data-automation-id="formField-sms">
    <input type="checkbox" id="sms" data-fp-ref="fp-0006">
    <label for="sms">I agree to receive text messages</label>
  </div>
  <label for="hear">How did you hear about us?</label>
  <textarea id="hear" data-fp-ref="fp-0007"></textarea>
  <script>window.track = 1;</script>
  <button data-automation-id="pageFooterNextButton">Save and Continue</button>
</div>`

const experiencePanelHTML = `
<div aria-labelledby="Work-Experience-1-panel">
  <div data-automation-id="formField-jobTitle">
    <label for="jt">Job Title*</label><input id="jt" data-fp-ref="fp-0010">
  </div>
  <div data-automation-id="formField-companyName">
    <label for="co">Company*</label><input id="co" data-fp-ref="fp-0011">
  </div>
  <div data-automation-id="formField-currentlyWorkHere">
    <input type="checkbox" id="cur" name="currentlyWorkHere" data-fp-ref="fp-0012">
    <label for="cur">I currently work here</label>
  </div>
  <div data-automation-id="formField-startDate">
    <label>From*</label>
    <div data-automation-id="dateInputWrapper">
      <input data-automation-id="dateSectionMonth-input" aria-label="Month" data-fp-ref="fp-0013">
      <input data-automation-id="dateSectionYear-input" aria-label="Year" data-fp-ref="fp-0014">
    </div>
  </div>
  <div data-automation-id="formField-endDate">
    <label>To</label>
    <div data-automation-id="dateInputWrapper">
      <input data-automation-id="dateSectionMonth-input" value="12" data-fp-ref="fp-0015">
      <input data-automation-id="dateSectionYear-input" value="2021" data-fp-ref="fp-0016">
    </div>
  </div>
</div>`

const authHTML = `
<div data-automation-id="signInContent">
  <label for="em">Email Address*</label>
  <input id="em" type="text" data-automation-id="email" data-fp-ref="fp-0030">
  <label for="pw">Password*</label>
  <input id="pw" type="password" data-automation-id="password" data-fp-ref="fp-0031">
  <label for="vpw">Verify New Password*</label>
  <input id="vpw" type="password" data-automation-id="verifyPassword" data-fp-ref="fp-0032">
  <input type="checkbox" id="cb" data-automation-id="createAccountCheckbox" data-fp-ref="fp-0033">
  <label for="cb">I agree</label>
  <div aria-label="Create Account" role="button">Create Account</div>
</div>`
