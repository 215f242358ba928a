package mail

import "fmt"

const (
	subjectVerification   = "Friendbook Account verification"
	subjectForgotPassword = "Friendbook Forgot Password"
)

func VerificationOTP(to, otp string) Message {
	return Message{
		To:      to,
		Subject: subjectVerification,
		HTML: fmt.Sprintf(`<p>Welcome to Friendbook!</p>
<p>Use the code below to verify your email address. It is valid for 5 minutes.</p>
<h2>%s</h2>`, otp),
	}
}

func ForgotPasswordOTP(to, otp string) Message {
	return Message{
		To:      to,
		Subject: subjectForgotPassword,
		HTML: fmt.Sprintf(`<p>We received a request to reset your Friendbook password.</p>
<p>Use the code below to continue. It is valid for 5 minutes.</p>
<h2>%s</h2>`, otp),
	}
}
