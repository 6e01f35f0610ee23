package smtp

import "fmt"

// Email bodies for the auth flows. Kept deliberately simple: a short HTML
// card plus a plain-text alternative.

// OTPEmail renders the one-time-code message. The code expires in 5 minutes.
func OTPEmail(name, code string) (subject, html, text string) {
	subject = "GlucoTrack verification code"
	html = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Use this code to finish signing in:</p>
<p style="font-size:28px;letter-spacing:8px;font-weight:bold">%s</p>
<p>The code expires in 5 minutes. If you didn't request it, you can ignore this email.</p>
</body></html>`, name, code)
	text = fmt.Sprintf("Hi %s, your GlucoTrack verification code is %s. It expires in 5 minutes.", name, code)
	return subject, html, text
}

// PasswordResetEmail renders the reset-link message. The link expires in 1 hour.
func PasswordResetEmail(name, resetLink string) (subject, html, text string) {
	subject = "GlucoTrack password reset"
	html = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Click the link below to reset your password:</p>
<p><a href="%s">Reset my password</a></p>
<p>The link expires in 1 hour. If you didn't request a reset, you can ignore this email.</p>
</body></html>`, name, resetLink)
	text = fmt.Sprintf("Hi %s, reset your GlucoTrack password here: %s (link expires in 1 hour)", name, resetLink)
	return subject, html, text
}

// WelcomeEmail renders the post-registration greeting.
func WelcomeEmail(name string) (subject, html, text string) {
	subject = "Welcome to GlucoTrack"
	html = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your GlucoTrack account is ready. You can start logging readings right away.</p>
</body></html>`, name)
	text = fmt.Sprintf("Hi %s, your GlucoTrack account is ready.", name)
	return subject, html, text
}
