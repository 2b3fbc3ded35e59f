package scraper

import "fmt"

const loginPageHTML = `<html><body>
<div id="cookie-banner"><button id="ccc-notify-accept">Accept all cookies</button></div>
<form action="/account/login" method="post">
  <label for="Username">Email address</label>
  <input name="username" id="Username" type="email" />
  <label for="Password">Password</label>
  <input name="password" id="Password" type="password" />
  <button type="submit">Sign in</button>
</form>
</body></html>`

const failedLoginPageHTML = `<html><body>
<form action="/account/login" method="post">
  <div class="validation-summary-errors">Invalid username or password.</div>
  <input name="username" id="Username" type="email" />
  <input name="password" id="Password" type="password" />
  <button type="submit">Sign in</button>
</form>
</body></html>`

// listingPageHTML renders one listing page of two records in the portal's
// container markup, with a numbered pager and an advisory position label.
func listingPageHTML(page, totalPages int, first, second [2]string) string {
	return fmt.Sprintf(`<html><body>
<ul class="results">
  <li class="result-item">
    <h3><a href="/scheme/%s">%s</a></h3>
    <dl>
      <dt>Funder</dt><dd>%s Trust</dd>
      <dt>Status</dt><dd>Open for Applications</dd>
      <dt>Maximum amount</dt><dd>&pound;10,000</dd>
      <dt>Closing date</dt><dd>30 September 2026</dd>
    </dl>
  </li>
  <li class="result-item">
    <h3><a href="/scheme/%s">%s</a></h3>
    <dl>
      <dt>Funder</dt><dd>%s Trust</dd>
      <dt>Status</dt><dd>Opening Soon</dd>
    </dl>
  </li>
</ul>
<nav class="pagination"><span data-page="1">1</span><span data-page="2">2</span><span data-page="3">3</span></nav>
<p>Page %d of %d</p>
</body></html>`,
		first[0], first[1], first[1],
		second[0], second[1], second[1],
		page, totalPages)
}

func detailPageHTML(title string) string {
	return fmt.Sprintf(`<html><body><main>
<h1>%s</h1>
<dl>
  <dt>Areas of work</dt>
  <dd><ul><li>Community</li><li>Education</li></ul></dd>
</dl>
<h2>Description</h2>
<p>The %s supports local projects &amp; events across the region.</p>
<h2>Eligibility</h2>
<p>Registered charities and community groups only.</p>
<h2>How to apply</h2>
<p>Applications are made online via the funder's portal.</p>
<h2>Contact</h2>
<p>grants@funder.example</p>
</main></body></html>`, title, title)
}

var fixtureSlugs = [3][2][2]string{
	{{"alpha-fund", "Alpha Community Fund"}, {"beta-fund", "Beta Education Grant"}},
	{{"gamma-fund", "Gamma Health Fund"}, {"delta-fund", "Delta Green Spaces Grant"}},
	{{"epsilon-fund", "Epsilon Arts Fund"}, {"zeta-fund", "Zeta Youth Grant"}},
}

// threePageSession builds a fake session backed by 3 listing pages of 2
// records each, with a detail page per record.
func threePageSession(baseURL string) *fakeSession {
	f := newFakeSession(baseURL)
	for _, pair := range fixtureSlugs {
		for _, rec := range pair {
			f.details[baseURL+"/scheme/"+rec[0]] = detailPageHTML(rec[1])
		}
	}
	for i, pair := range fixtureSlugs {
		f.listings = append(f.listings, listingPageHTML(i+1, 3, pair[0], pair[1]))
	}
	return f
}
