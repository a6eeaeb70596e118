// Package domain holds the values shared by every layer of eventd: events,
// exit codes, classified failures and sentinel errors. It imports nothing
// outside the standard library.
package domain
