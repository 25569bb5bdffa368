package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// resetPasswordPageHTML reads the token from the query string in the browser,
// so nothing from the request is echoed into the markup.
var resetPasswordPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<meta name="referrer" content="no-referrer" />
<title>Reset your password</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#2c3e50,#8e44ad); color: #333; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
.card { background: #fff; padding: 28px; border-radius: 8px; width: 90%; max-width: 400px; box-shadow: 0 10px 40px rgba(0,0,0,0.25); }
input { width: 100%; box-sizing: border-box; padding: 10px; margin: 8px 0; border: 1px solid #ccc; border-radius: 4px; }
button { width: 100%; padding: 12px; font-size: 16px; border: none; border-radius: 4px; cursor: pointer; background: #8e44ad; color: #fff; }
#status { margin-top: 12px; min-height: 1.2em; }
.error { color: #c0392b; }
.ok { color: #27ae60; }
</style>
</head>
<body>
<div class="card">
  <h2>Choose a new password</h2>
  <form id="reset-form">
    <input type="password" name="password" placeholder="New password (8 characters minimum)" minlength="8" required />
    <input type="password" name="confirm" placeholder="Repeat new password" minlength="8" required />
    <button type="submit">Reset password</button>
  </form>
  <p id="status"></p>
</div>
<script>
const token = new URLSearchParams(window.location.search).get('token') || '';
const status = document.getElementById('status');
function show(message, kind) {
  status.textContent = message;
  status.className = kind;
}
if (!token) {
  show('This reset link is incomplete. Request a new one.', 'error');
}
document.getElementById('reset-form').addEventListener('submit', async function (event) {
  event.preventDefault();
  const form = new FormData(event.target);
  if (form.get('password') !== form.get('confirm')) {
    show('Passwords do not match.', 'error');
    return;
  }
  const response = await fetch('/auth/reset-password', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ token: token, password: form.get('password') })
  });
  const payload = await response.json().catch(() => ({}));
  if (response.ok) {
    show(payload.message || 'Password updated. You can now log in.', 'ok');
    event.target.reset();
  } else {
    show(payload.error || 'Unable to reset password.', 'error');
  }
});
</script>
</body>
</html>`

func RegisterPages(e *echo.Echo, limits RateLimits) {
	e.GET("/reset-password", func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.HTML(http.StatusOK, resetPasswordPageHTML)
	}, limits.General)
}
