package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geocoder89/jobtrail/internal/cache"
	"github.com/geocoder89/jobtrail/internal/domain/job"
	"github.com/geocoder89/jobtrail/internal/repo/memory"
)

// ---- fakes ----

type recordingObserver struct {
	results []string
}

func (o *recordingObserver) ObserveCache(result string) {
	o.results = append(o.results, result)
}

// countingStore counts CountByStatus calls through to the wrapped store.
type countingStore struct {
	Store
	counts int
}

func (s *countingStore) CountByStatus(ctx context.Context, ownerID string) (job.Stats, error) {
	s.counts++
	return s.Store.CountByStatus(ctx, ownerID)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis unreachable")
}
func (brokenCache) Set(context.Context, string, []byte) error { return errors.New("redis unreachable") }
func (brokenCache) Delete(context.Context, string) error      { return errors.New("redis unreachable") }

func newTestService(c cache.Store) (*Service, *countingStore, *recordingObserver) {
	store := &countingStore{Store: memory.NewJobsRepo()}
	obs := &recordingObserver{}

	svc := NewService(store, c, slog.New(slog.NewTextHandler(io.Discard, nil))).WithCacheObserver(obs)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	return svc, store, obs
}

func ptr[T any](v T) *T { return &v }

// ---- tests ----

func TestService_CreateAndGet(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	j, err := svc.Create(ctx, "owner", job.CreateRequest{Company: "Acme", Role: "Dev"})
	require.NoError(t, err)
	require.Equal(t, "owner", j.OwnerID)
	require.Equal(t, job.StatusApplied, j.Status)
	require.True(t, svc.now().Equal(j.ApplicationDate))

	got, err := svc.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, j, got)

	_, err = svc.Create(ctx, "owner", job.CreateRequest{Company: "Acme"})
	require.Error(t, err)
}

func TestService_TimestampsKeepMicroseconds(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 123456789, time.UTC) }

	j, err := svc.Create(ctx, "owner", job.CreateRequest{
		Company:         "Acme",
		Role:            "Dev",
		ApplicationDate: "2024-02-01T10:00:00.987654321Z",
	})
	require.NoError(t, err)
	require.Equal(t, 123456000, j.CreatedAt.Nanosecond())
	require.Equal(t, 987654000, j.ApplicationDate.Nanosecond())

	svc.now = func() time.Time { return time.Date(2024, 3, 2, 8, 0, 0, 5, time.UTC) }
	updated, err := svc.Update(ctx, j.ID, "owner", job.UpdateRequest{Notes: ptr("called back")})
	require.NoError(t, err)
	require.Equal(t, 0, updated.UpdatedAt.Nanosecond())

	got, err := svc.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)
}

func TestService_UpdateDeleteOwnership(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	j, err := svc.Create(ctx, "owner", job.CreateRequest{Company: "Acme", Role: "Dev"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "00000000-0000-0000-0000-000000000000", "owner", job.UpdateRequest{})
	require.ErrorIs(t, err, job.ErrNotFound)

	_, err = svc.Update(ctx, j.ID, "stranger", job.UpdateRequest{Status: ptr("Offer")})
	require.ErrorIs(t, err, job.ErrForbidden)

	require.ErrorIs(t, svc.Delete(ctx, j.ID, "stranger"), job.ErrForbidden)

	updated, err := svc.Update(ctx, j.ID, "owner", job.UpdateRequest{Status: ptr("Offer")})
	require.NoError(t, err)
	require.Equal(t, job.StatusOffer, updated.Status)
	require.Equal(t, j.CreatedAt, updated.CreatedAt)

	require.NoError(t, svc.Delete(ctx, j.ID, "owner"))
	require.ErrorIs(t, svc.Delete(ctx, j.ID, "owner"), job.ErrNotFound)
}

func TestService_ListScopedToOwner(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "a", job.CreateRequest{Company: "Acme", Role: "Dev"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "b", job.CreateRequest{Company: "Other", Role: "Dev"})
	require.NoError(t, err)

	got, err := svc.ListByOwner(ctx, "a", job.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Acme", got[0].Company)
}

func TestService_StatsCachedAndInvalidated(t *testing.T) {
	svc, store, obs := newTestService(cache.New(time.Minute))
	ctx := context.Background()

	j, err := svc.Create(ctx, "owner", job.CreateRequest{Company: "Acme", Role: "Dev"})
	require.NoError(t, err)

	st, err := svc.Stats(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, job.Stats{Total: 1, Applied: 1}, st)

	st, err = svc.Stats(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, st.Total)
	require.Equal(t, 1, store.counts, "second read should be served from cache")

	_, err = svc.Update(ctx, j.ID, "owner", job.UpdateRequest{Status: ptr("Interview")})
	require.NoError(t, err)

	st, err = svc.Stats(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, job.Stats{Total: 1, Interview: 1}, st)
	require.Equal(t, 2, store.counts)

	require.NoError(t, svc.Delete(ctx, j.ID, "owner"))

	st, err = svc.Stats(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, job.Stats{}, st)

	require.Equal(t, []string{"miss", "hit", "miss", "miss"}, obs.results)
}

func TestService_StatsSurvivesCacheOutage(t *testing.T) {
	svc, store, obs := newTestService(brokenCache{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner", job.CreateRequest{Company: "Acme", Role: "Dev"})
	require.NoError(t, err)

	st, err := svc.Stats(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, st.Total)
	require.Equal(t, 1, store.counts)
	require.Equal(t, []string{"error"}, obs.results)
}
