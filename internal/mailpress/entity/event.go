package entity

const (
	// MailScheduledDestination is the subject scheduled mail jobs are published to.
	MailScheduledDestination = "mailpress.mail.scheduled"
	// MailScheduledConsumerDelivery is the queue group of the delivery worker.
	MailScheduledConsumerDelivery = "mailpress-delivery"

	// HeaderCorrelationID carries the request correlation id on published jobs.
	HeaderCorrelationID = "cID"
	HeaderJobID         = "X-Mailpress-Job-ID"
	HeaderOriginUser    = "X-Mailpress-Origin-User"
)
