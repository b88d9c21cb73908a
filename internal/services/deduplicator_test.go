package services

import (
	"context"
	"testing"
	"time"

	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/jobmate/dedup-service/internal/locks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeJobStore struct {
	jobs     []models.Job
	metadata []models.CanonicalJobMetadata
}

func (f *fakeJobStore) GetActiveByUser(_ context.Context, userID int64) ([]models.Job, error) {
	var active []models.Job
	for _, job := range f.jobs {
		if job.UserID == userID && !job.Archived {
			active = append(active, job)
		}
	}
	return active, nil
}

func (f *fakeJobStore) SaveMetadata(_ context.Context, metadata []models.CanonicalJobMetadata, _ int) error {
	f.metadata = metadata
	return nil
}

type fakeDuplicateStore struct {
	edges  map[[2]int64]*models.JobDuplicate
	nextID int64
}

func newFakeDuplicateStore() *fakeDuplicateStore {
	return &fakeDuplicateStore{edges: map[[2]int64]*models.JobDuplicate{}}
}

func (f *fakeDuplicateStore) UpsertAutomatic(_ context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error) {
	key := [2]int64{edge.CanonicalJobID, edge.DuplicateJobID}
	if existing, ok := f.edges[key]; ok {
		if existing.ManuallyConfirmed {
			copied := *existing
			return &copied, nil
		}
		existing.OverallSimilarity = edge.OverallSimilarity
		existing.ConfidenceLevel = edge.ConfidenceLevel
		existing.DetectionMethod = edge.DetectionMethod
		copied := *existing
		return &copied, nil
	}

	f.nextID++
	edge.ID = f.nextID
	f.edges[key] = &edge
	copied := edge
	return &copied, nil
}

func (f *fakeDuplicateStore) CanonicalOf(_ context.Context, jobID int64) (*models.JobDuplicate, error) {
	for key, edge := range f.edges {
		if key[1] == jobID {
			copied := *edge
			return &copied, nil
		}
	}
	return nil, nil
}

func mirroredJobs(userID int64) []models.Job {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return []models.Job{
		{
			ID: 1, UserID: userID, Title: "Senior Software Engineer", Company: "Apple",
			Location: "Cupertino, CA", Url: "https://jobs.apple.com/role/100",
			Description: "Build and ship features for the Maps team. Strong Swift and Objective-C experience required.",
			SalaryMin:   intPtr(150000), SalaryMax: intPtr(210000),
			JobType: models.FullTime, ExperienceLevel: models.Senior, WorkArrangement: models.Hybrid,
			CreatedAt: base,
		},
		{
			ID: 2, UserID: userID, Title: "Sr Software Engineer", Company: "Apple Inc",
			Location: "Cupertino, California", Url: "https://boards.example.com/jobs/55",
			Description: "Build and ship features for the Maps team. Strong Swift and Objective-C experience needed.",
			CreatedAt:   base.Add(time.Hour),
		},
		{
			ID: 3, UserID: userID, Title: "Veterinary Assistant", Company: "PetCare Clinic",
			Location: "Austin, TX", Url: "https://petcare.example.com/careers/7",
			Description: "Assist veterinarians with animal care, surgery prep and client communication.",
			CreatedAt:   base.Add(2 * time.Hour),
		},
	}
}

func newTestDeduplicator(t *testing.T, jobs *fakeJobStore, duplicates *fakeDuplicateStore) *Deduplicator {
	cfg := testDedupConfig()
	d, err := NewDeduplicator(nil, locks.NewLocalLocker(), jobs, duplicates, NewWeightedFieldScorer(cfg), cfg)
	assert.NoError(t, err)
	return d
}

func Test_Run_DetectsMirroredPosting(t *testing.T) {

	jobs := &fakeJobStore{jobs: mirroredJobs(7)}
	duplicates := newFakeDuplicateStore()

	summary, err := newTestDeduplicator(t, jobs, duplicates).Run(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.TotalJobsProcessed)
	assert.Equal(t, 1, summary.DuplicatesFound)
	assert.Equal(t, 1, summary.CanonicalJobsIdentified)
	assert.Len(t, duplicates.edges, 1)

	// the richer posting becomes canonical
	edge, ok := duplicates.edges[[2]int64{1, 2}]
	assert.True(t, ok)
	assert.Equal(t, models.MethodFuzzyMatch, edge.DetectionMethod)
	assert.False(t, edge.ManuallyConfirmed)

	// metadata was refreshed for every active job
	assert.Len(t, jobs.metadata, 3)
}

func Test_Run_IsIdempotent(t *testing.T) {

	jobs := &fakeJobStore{jobs: mirroredJobs(7)}
	duplicates := newFakeDuplicateStore()
	deduplicator := newTestDeduplicator(t, jobs, duplicates)

	first, err := deduplicator.Run(context.Background(), 7)
	assert.NoError(t, err)

	second, err := deduplicator.Run(context.Background(), 7)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, duplicates.edges, 1)
}

func Test_Run_CanonicalChoiceIgnoresInsertionOrder(t *testing.T) {

	reversed := mirroredJobs(7)
	reversed[0], reversed[1] = reversed[1], reversed[0]

	jobs := &fakeJobStore{jobs: reversed}
	duplicates := newFakeDuplicateStore()

	_, err := newTestDeduplicator(t, jobs, duplicates).Run(context.Background(), 7)
	assert.NoError(t, err)

	_, ok := duplicates.edges[[2]int64{1, 2}]
	assert.True(t, ok, "job 1 must stay canonical regardless of load order")
}

func Test_Run_WhenLockHeld_ReturnsConflict(t *testing.T) {

	locker := locks.NewLocalLocker()
	release, ok, err := locker.TryLock(context.Background(), 7)
	assert.NoError(t, err)
	assert.True(t, ok)
	defer release()

	cfg := testDedupConfig()
	d, err := NewDeduplicator(nil, locker, &fakeJobStore{}, newFakeDuplicateStore(), NewWeightedFieldScorer(cfg), cfg)
	assert.NoError(t, err)

	_, err = d.Run(context.Background(), 7)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func Test_Run_PreservesManuallyConfirmedEdge(t *testing.T) {

	jobs := &fakeJobStore{jobs: mirroredJobs(7)}
	duplicates := newFakeDuplicateStore()

	confirmedBy := int64(7)
	duplicates.edges[[2]int64{1, 2}] = &models.JobDuplicate{
		ID: 50, CanonicalJobID: 1, DuplicateJobID: 2, UserID: 7,
		OverallSimilarity: 10, ConfidenceLevel: models.ConfidenceHigh,
		DetectionMethod: models.MethodManual, ManuallyConfirmed: true, ConfirmedBy: &confirmedBy,
	}

	summary, err := newTestDeduplicator(t, jobs, duplicates).Run(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.DuplicatesFound)

	edge := duplicates.edges[[2]int64{1, 2}]
	assert.True(t, edge.ManuallyConfirmed)
	assert.Equal(t, models.MethodManual, edge.DetectionMethod)
	assert.Equal(t, 10, edge.OverallSimilarity)
}

func Test_Run_KeepsOlderCanonicalChain(t *testing.T) {

	jobs := &fakeJobStore{jobs: mirroredJobs(7)}
	duplicates := newFakeDuplicateStore()

	// job 2 already belongs to an older chain under job 9
	duplicates.edges[[2]int64{9, 2}] = &models.JobDuplicate{
		ID: 51, CanonicalJobID: 9, DuplicateJobID: 2, UserID: 7,
		OverallSimilarity: 90, ConfidenceLevel: models.ConfidenceHigh,
		DetectionMethod: models.MethodFuzzyMatch,
	}

	summary, err := newTestDeduplicator(t, jobs, duplicates).Run(context.Background(), 7)

	assert.NoError(t, err)
	assert.Zero(t, summary.DuplicatesFound)
	assert.Len(t, duplicates.edges, 1, "conflicting edge must be skipped, not written")
}

func Test_Run_RefusesCycleEdge(t *testing.T) {

	jobSet := mirroredJobs(7)
	jobs := &fakeJobStore{jobs: jobSet}
	duplicates := newFakeDuplicateStore()

	// the would-be canonical is already a duplicate of the would-be duplicate
	duplicates.edges[[2]int64{2, 1}] = &models.JobDuplicate{
		ID: 52, CanonicalJobID: 2, DuplicateJobID: 1, UserID: 7,
		OverallSimilarity: 95, ConfidenceLevel: models.ConfidenceHigh,
		DetectionMethod: models.MethodManual, ManuallyConfirmed: true,
	}

	summary, err := newTestDeduplicator(t, jobs, duplicates).Run(context.Background(), 7)

	assert.NoError(t, err)
	assert.Zero(t, summary.DuplicatesFound)
	_, reversed := duplicates.edges[[2]int64{1, 2}]
	assert.False(t, reversed, "reverse edge would close a cycle")
}

type flakyDuplicateStore struct {
	*fakeDuplicateStore
	failures int
	attempts int
}

func (f *flakyDuplicateStore) UpsertAutomatic(ctx context.Context, edge models.JobDuplicate) (*models.JobDuplicate, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, errors.New("database is locked")
	}
	return f.fakeDuplicateStore.UpsertAutomatic(ctx, edge)
}

func Test_Run_RetriesTransientWriteFailure(t *testing.T) {

	jobs := &fakeJobStore{jobs: mirroredJobs(7)}
	duplicates := &flakyDuplicateStore{fakeDuplicateStore: newFakeDuplicateStore(), failures: 1}

	cfg := testDedupConfig()
	d, err := NewDeduplicator(nil, locks.NewLocalLocker(), jobs, duplicates, NewWeightedFieldScorer(cfg), cfg)
	assert.NoError(t, err)

	summary, err := d.Run(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.DuplicatesFound)
	assert.Equal(t, 2, duplicates.attempts, "first write fails, the retry lands")

	_, ok := duplicates.edges[[2]int64{1, 2}]
	assert.True(t, ok)
}

func Test_SharesBlockingKey(t *testing.T) {

	apple := models.Job{Title: "Senior Software Engineer", Company: "Apple"}
	appleMirror := models.Job{Title: "Sr Software Engineer", Company: "Apple Inc"}
	vet := models.Job{Title: "Veterinary Assistant", Company: "PetCare Clinic"}

	assert.True(t, sharesBlockingKey(apple, appleMirror))
	assert.False(t, sharesBlockingKey(apple, vet))

	// same normalized URL always survives blocking
	a := models.Job{Url: "https://x.example.com/1", Title: "A", Company: "B"}
	b := models.Job{Url: "https://x.example.com/1", Title: "C", Company: "D"}
	assert.True(t, sharesBlockingKey(a, b))
}

func Test_PickCanonical_TieBreaks(t *testing.T) {

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	quality := map[int64]models.CanonicalJobMetadata{
		1: {JobID: 1, OverallQualityScore: 60},
		2: {JobID: 2, OverallQualityScore: 60},
	}

	older := models.Job{ID: 2, CreatedAt: base}
	newer := models.Job{ID: 1, CreatedAt: base.Add(time.Hour)}

	canonical, duplicate := pickCanonical(newer, older, quality)
	assert.Equal(t, int64(2), canonical.ID, "equal quality falls back to first seen")
	assert.Equal(t, int64(1), duplicate.ID)

	sameTime := models.Job{ID: 5, CreatedAt: base}
	sameTime2 := models.Job{ID: 4, CreatedAt: base}
	quality[4] = models.CanonicalJobMetadata{JobID: 4, OverallQualityScore: 60}
	quality[5] = models.CanonicalJobMetadata{JobID: 5, OverallQualityScore: 60}

	canonical, _ = pickCanonical(sameTime, sameTime2, quality)
	assert.Equal(t, int64(4), canonical.ID, "equal timestamps fall back to lower id")
}
