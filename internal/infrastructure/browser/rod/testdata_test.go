package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	ApplicationHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="info">
		<label for="first">First Name*</label>
		<input id="first" type="text" />
		<input id="secret" type="hidden" value="x" />
		<label for="country">Country</label>
		<select id="country">
			<option value="">Select One</option>
			<option value="CA">Canada</option>
			<option value="US">United States</option>
		</select>
		<fieldset>
			<legend>Previously worked here?</legend>
			<input type="radio" id="prev-yes" name="prev" value="yes"><label for="prev-yes">Yes</label>
			<input type="radio" id="prev-no" name="prev" value="no"><label for="prev-no">No</label>
		</fieldset>
		<input type="checkbox" id="terms"><label for="terms">I agree</label>
		<button id="submit" disabled>Submit</button>
		<button id="next">Next</button>
	</div>
</body>
</html>`

	ListboxHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="info">
		<label for="phoneType">Phone Device Type</label>
		<button id="phoneType" aria-haspopup="listbox">Select One</button>
		<ul id="popup" role="listbox" style="display:none">
			<li role="option" data-value="mobile">Mobile</li>
			<li role="option" data-value="landline">Landline</li>
		</ul>
	</div>
	<script>
		const btn = document.getElementById('phoneType');
		const popup = document.getElementById('popup');
		btn.addEventListener('click', () => { popup.style.display = 'block'; });
		document.addEventListener('keydown', (e) => { if (e.key === 'Escape') popup.style.display = 'none'; });
		popup.querySelectorAll('li').forEach(li => li.addEventListener('click', () => {
			btn.textContent = li.textContent;
			popup.style.display = 'none';
		}));
	</script>
</body>
</html>`

	TagInputHTML = `<!DOCTYPE html>
<html>
<body>
	<div data-automation-id="multiSelectContainer">
		<div id="tags"></div>
		<input id="skills" type="text" />
	</div>
	<ul id="prompts" role="listbox" style="display:none"></ul>
	<script>
		const input = document.getElementById('skills');
		const prompts = document.getElementById('prompts');
		input.addEventListener('keydown', (e) => {
			if (e.key !== 'Enter') return;
			prompts.innerHTML = '';
			const li = document.createElement('li');
			li.setAttribute('role', 'option');
			li.textContent = input.value;
			li.addEventListener('click', () => {
				const tag = document.createElement('span');
				tag.setAttribute('data-automation-id', 'selectedItem');
				tag.textContent = li.textContent;
				document.getElementById('tags').appendChild(tag);
				prompts.style.display = 'none';
				input.value = '';
			});
			prompts.appendChild(li);
			prompts.style.display = 'block';
		});
	</script>
</body>
</html>`
)
