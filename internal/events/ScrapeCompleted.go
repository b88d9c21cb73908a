package events

var ScrapeCompletedTopic = "ScrapeCompletedEvent"

// ScrapeCompleted is published by the ingestion pipeline once a scraping cycle
// for one user has been written to the job table.
type ScrapeCompleted struct {
	UserID   int64
	JobsSeen int
}
