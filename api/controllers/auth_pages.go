package controllers

import (
	"html/template"
	"net/http"
)

// AuthPages renders the small browser-facing pages linked from auth emails.
type AuthPages struct {
	frontendURL string
	verify      *template.Template
	reset       *template.Template
}

func NewAuthPages(frontendURL string) *AuthPages {
	return &AuthPages{
		frontendURL: frontendURL,
		verify:      template.Must(template.New("verify").Parse(verifyResultPage)),
		reset:       template.Must(template.New("reset").Parse(resetFormPage)),
	}
}

func (p *AuthPages) RenderVerifyResult(w http.ResponseWriter, verified bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !verified {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = p.verify.Execute(w, map[string]any{
		"Verified":    verified,
		"FrontendURL": p.frontendURL,
	})
}

func (p *AuthPages) RenderResetForm(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = p.reset.Execute(w, map[string]any{
		"Token":       token,
		"FrontendURL": p.frontendURL,
	})
}

const verifyResultPage = `<!DOCTYPE html>
<html>
<head><title>VegoBolt Email Verification</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 4rem auto; text-align: center;">
{{if .Verified}}
<h1>Email verified</h1>
<p>Your account is ready. You can close this tab and log in to VegoBolt.</p>
{{else}}
<h1>Verification failed</h1>
<p>The verification link is invalid or has expired. Request a new one from the app.</p>
{{end}}
{{if .FrontendURL}}<p><a href="{{.FrontendURL}}">Open VegoBolt</a></p>{{end}}
</body>
</html>
`

const resetFormPage = `<!DOCTYPE html>
<html>
<head><title>VegoBolt Password Reset</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 4rem auto;">
<h1>Reset your password</h1>
<form id="reset-form">
  <input type="hidden" id="token" value="{{.Token}}">
  <p><label>New password<br><input type="password" id="password" minlength="6" required></label></p>
  <p><button type="submit">Reset password</button></p>
</form>
<p id="result"></p>
<script>
document.getElementById('reset-form').addEventListener('submit', async function (ev) {
  ev.preventDefault();
  const resp = await fetch('/api/auth/reset-password', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({
      token: document.getElementById('token').value,
      new_password: document.getElementById('password').value
    })
  });
  const body = await resp.json();
  document.getElementById('result').textContent = body.message || body.error || 'Done';
});
</script>
</body>
</html>
`
