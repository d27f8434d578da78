// Package collections names the documents shared between bounded contexts.
// A module owns its collection; others read it only through these names.
package collections

const (
	Users         = "users"
	BosProfiles   = "bosProfiles"
	JobRequests   = "jobRequests"
	Leads         = "leads"
	CreditEntries = "creditEntries"
	Reviews       = "reviews"
	Notifications = "notifications"
)

// Profile fields written outside the bos module.
const (
	FieldLeadCredits   = "leadCredits"
	FieldRatingAverage = "ratingAverage"
	FieldRatingCount   = "ratingCount"
	FieldUpdatedAt     = "updatedAt"
)
