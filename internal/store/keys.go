package store

import "strings"

// Key namespaces. One hash record per namespace per account; the normalized
// email is the only identity, so every key is a pure function of it.
const (
	accountPrefix       = "user:"
	notificationsPrefix = "settings:notifications:"
	billingPrefix       = "settings:billing:"
	plansPrefix         = "settings:plans:"
)

// Normalize trims surrounding whitespace and lowercases an email address.
// All key derivation and token subjects go through this.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func AccountKey(email string) string       { return accountPrefix + Normalize(email) }
func NotificationsKey(email string) string { return notificationsPrefix + Normalize(email) }
func BillingKey(email string) string       { return billingPrefix + Normalize(email) }
func PlansKey(email string) string         { return plansPrefix + Normalize(email) }

// AccountPattern matches every account key, for incremental scans.
func AccountPattern() string { return accountPrefix + "*" }

// AllKeys returns the four record keys owned by one account, account first.
// Deletion enumerates these individually rather than issuing one multi-key
// delete, which would fail on a key-sharded backend.
func AllKeys(email string) []string {
	return []string{
		AccountKey(email),
		NotificationsKey(email),
		BillingKey(email),
		PlansKey(email),
	}
}
