package models

// EmailKind selects the template of an outgoing email.
type EmailKind string

const (
	// EmailVerification carries the link that confirms an address.
	EmailVerification EmailKind = "verification"
	// EmailPasswordReset carries the link that opens the reset form.
	EmailPasswordReset EmailKind = "password_reset"
)

// EmailMessage is the payload published to the notification queue and
// consumed by the email sender.
type EmailMessage struct {
	Kind   EmailKind `json:"kind"`
	To     string    `json:"to"`
	Pseudo string    `json:"pseudo"`
	URL    string    `json:"url"`
}
