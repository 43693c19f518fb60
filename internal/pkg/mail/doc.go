// Package mail defines the contracts for sending email messages.
//
// The rest of the application stays independent from a specific email
// provider: use cases work with the Mail interface and Message payload, and the
// SMTP implementation here delivers through github.com/go-mail/mail.
package mail
