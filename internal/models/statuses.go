package models

type UserRole string
type SubscriptionTier string
type JobStatus string
type JobUrgency string
type QuoteStatus string
type PaymentType string

const (
	UserRoleCustomer     UserRole = "customer"
	UserRoleTradesperson UserRole = "tradesperson"
	UserRoleAdmin        UserRole = "admin"

	TierBasic    SubscriptionTier = "basic"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"

	JobStatusOpen      JobStatus = "open"
	JobStatusQuoted    JobStatus = "quoted"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"

	UrgencyFlexible  JobUrgency = "flexible"
	UrgencySoon      JobUrgency = "soon"
	UrgencyUrgent    JobUrgency = "urgent"
	UrgencyEmergency JobUrgency = "emergency"

	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"

	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypeFinal   PaymentType = "final"
)

// BasicTierQuoteLimit is the number of quotes a basic-tier tradesperson
// may submit within one monthly window. Pro and business are unlimited.
const BasicTierQuoteLimit = 5
