package events

var DuplicatesDetectedTopic = "DuplicatesDetectedEvent"

type DuplicatesDetected struct {
	UserID          int64
	DuplicatesFound int
	CanonicalJobs   int
}
