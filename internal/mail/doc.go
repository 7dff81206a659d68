// Package mail delivers reminder messages. SMTPSender speaks SMTP with PLAIN
// auth, GmailSender posts to the Gmail REST API with an OAuth refresh token,
// and NoopSender stands in when no credentials are configured.
package mail
