package models

import (
	"strings"
	"time"
)

type WorkArrangement string

const (
	OnSite WorkArrangement = "on_site"
	Hybrid WorkArrangement = "hybrid"
	Remote WorkArrangement = "remote"
)

type JobType string

const (
	FullTime   JobType = "full_time"
	PartTime   JobType = "part_time"
	Contract   JobType = "contract"
	Internship JobType = "internship"
)

type ExperienceLevel string

const (
	EntryLevel ExperienceLevel = "entry"
	MidLevel   ExperienceLevel = "mid"
	Senior     ExperienceLevel = "senior"
	Lead       ExperienceLevel = "lead"
)

// Job is one scraped or manually entered posting. The scraping pipeline owns
// writes to this table; the dedup service only reads it and maintains
// CanonicalJobMetadata alongside.
type Job struct {
	ID              int64
	UserID          int64
	Title           string
	Company         string
	Location        string
	Description     string
	Url             string
	SourceName      string
	SalaryMin       *int
	SalaryMax       *int
	WorkArrangement WorkArrangement
	JobType         JobType
	ExperienceLevel ExperienceLevel
	Archived        bool
	Saved           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (j *Job) HasSalary() bool {
	return j.SalaryMin != nil || j.SalaryMax != nil
}

func (j *Job) HasMeaningfulDescription() bool {
	return len(strings.TrimSpace(j.Description)) >= 50
}
