package domain

import "time"

// Sender is a configured delivery identity (an SMTP account for email).
// Credentials are stored encrypted and never serialized.
type Sender struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"userId"`
	Name                 string           `json:"name"`
	Type                 NotificationType `json:"type"`
	EncryptedCredentials string           `json:"-"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// EmailCredentials is the decrypted credential shape for email senders.
type EmailCredentials struct {
	SMTPHost string `json:"smtpHost"`
	SMTPPort int    `json:"smtpPort"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
