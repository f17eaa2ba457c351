package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/jobtrail/internal/domain/job"
)

type JobsRepo struct {
	mu    sync.RWMutex
	items map[string]job.Job
}

func NewJobsRepo() *JobsRepo {
	return &JobsRepo{
		items: make(map[string]job.Job),
	}
}

func (r *JobsRepo) Create(_ context.Context, j job.Job) error {
	r.mu.Lock()
	r.items[j.ID] = j
	r.mu.Unlock()

	return nil
}

func (r *JobsRepo) GetByID(_ context.Context, id string) (job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.items[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}

	return j, nil
}

func (r *JobsRepo) ListByOwner(_ context.Context, ownerID string, f job.Filter) ([]job.Job, error) {
	r.mu.RLock()
	out := make([]job.Job, 0)
	for _, j := range r.items {
		if j.OwnerID == ownerID && f.Matches(j) {
			out = append(out, j)
		}
	}
	r.mu.RUnlock()

	sortJobs(out)
	return out, nil
}

// Update replaces the stored job wholesale; the last writer wins.
func (r *JobsRepo) Update(_ context.Context, j job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[j.ID]; !ok {
		return job.ErrNotFound
	}

	r.items[j.ID] = j
	return nil
}

func (r *JobsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return job.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *JobsRepo) CountByStatus(_ context.Context, ownerID string) (job.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st job.Stats
	for _, j := range r.items {
		if j.OwnerID == ownerID {
			st.Add(j.Status, 1)
		}
	}

	return st, nil
}

// same order the SQL stores use
func sortJobs(jobs []job.Job) {
	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].ApplicationDate.Equal(jobs[b].ApplicationDate) {
			return jobs[a].ApplicationDate.After(jobs[b].ApplicationDate)
		}
		return jobs[a].ID < jobs[b].ID
	})
}
