// Package mailer sends notification emails about newly scheduled lessons.
//
// The Notifier interface is deliberately tiny: the sync engine treats
// notifications as fire-and-forget, so a failed send is logged and dropped,
// never retried and never allowed to affect ledger state. The SMTP
// implementation uses gomail; NopNotifier serves disabled configurations
// and tests.
package mailer
