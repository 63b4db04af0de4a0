package forensics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// Scenario A: silence around hour H, 25 likes in H from actors created less
// than an hour before their like. A spike with fresh fraction 1.0.
func TestScenarioBotAttack(t *testing.T) {
	store := NewMemStore()
	addFreshBurst(store, "s1", hourH, 25)
	eng := newTestEngine(t, store)
	ctx := context.Background()

	spike, err := eng.CheckSpike(ctx, "s1", hourH)
	require.NoError(t, err)
	assert.True(t, spike.IsSpike)

	report, err := eng.ScoreWindow(ctx, "s1", hourH, hourH.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.Summary.FreshFraction)
}

// Scenario B: steady traffic from long-established, high-activity actors.
// No spike, fresh fraction approximately zero.
func TestScenarioOrganicTraffic(t *testing.T) {
	store := NewMemStore()
	addBucket(store, "s2", hourH.Add(-time.Hour), 100)
	addBucket(store, "s2", hourH, 110)
	addBucket(store, "s2", hourH.Add(time.Hour), 95)
	eng := newTestEngine(t, store)
	ctx := context.Background()

	spike, err := eng.CheckSpike(ctx, "s2", hourH)
	require.NoError(t, err)
	assert.False(t, spike.IsSpike)

	report, err := eng.ScoreWindow(ctx, "s2", hourH, hourH.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Summary.FreshCount)
	assert.Equal(t, 0.0, report.Summary.FreshFraction)
}

// Against a fixed store snapshot every operation returns identical results
// across repeated invocations.
func TestDeterminism(t *testing.T) {
	store := NewMemStore()
	addFreshBurst(store, "s1", hourH, 25)
	addBucket(store, "s1", hourH.Add(-time.Hour), 7)
	addBucket(store, "s2", hourH, 40)
	eng := newTestEngine(t, store)
	ctx := context.Background()

	spike1, err := eng.CheckSpike(ctx, "s1", hourH)
	require.NoError(t, err)
	report1, err := eng.ScoreWindow(ctx, "s1", hourH, hourH.Add(time.Hour))
	require.NoError(t, err)
	scan1, err := eng.ScanAnomalies(ctx, 10, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		spike2, err := eng.CheckSpike(ctx, "s1", hourH)
		require.NoError(t, err)
		assert.Equal(t, spike1, spike2)

		report2, err := eng.ScoreWindow(ctx, "s1", hourH, hourH.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, report1, report2)

		scan2, err := eng.ScanAnomalies(ctx, 10, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, scan1, scan2)
	}
}

// Summing every hour bucket reproduces the subject's total event count: no
// event double-counted or dropped by the windowing.
func TestBucketCompleteness(t *testing.T) {
	store := NewMemStore()
	// Events scattered across hours, including edge-of-bucket timestamps.
	actors := []string{"a1", "a2", "a3"}
	for _, a := range actors {
		store.AddEntity(a, hourH.Add(-400*24*time.Hour))
	}
	var total int64
	for i := 0; i < 50; i++ {
		at := hourH.Add(time.Duration(i*37) * time.Minute)
		store.AddEvent(actors[i%3], "s1", at)
		total++
	}
	// Edge timestamps: exact bucket start, and the last instant of a bucket.
	store.AddEvent("a1", "s1", hourH)
	store.AddEvent("a2", "s1", hourH.Add(time.Hour-time.Nanosecond))
	total += 2

	eng := newTestEngine(t, store)
	sum, err := eng.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, total, sum.TotalEvents)

	series, err := eng.Series(context.Background(), "s1")
	require.NoError(t, err)
	var fromBuckets int64
	for _, b := range series {
		fromBuckets += b.Count
	}
	assert.Equal(t, total, fromBuckets)
}

func TestSummarizePeakBucket(t *testing.T) {
	store := NewMemStore()
	addBucket(store, "s1", hourH.Add(-time.Hour), 5)
	addBucket(store, "s1", hourH, 12)
	addBucket(store, "s1", hourH.Add(time.Hour), 12)
	eng := newTestEngine(t, store)

	sum, err := eng.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, sum.Exists)
	assert.Equal(t, int64(29), sum.TotalEvents)
	require.NotNil(t, sum.PeakBucket)
	assert.True(t, sum.PeakBucket.HourStart.Equal(hourH), "peak ties resolve to the earliest hour")
	assert.Equal(t, int64(12), sum.PeakBucket.Count)
}

func TestListSubjects(t *testing.T) {
	store := NewMemStore()
	addBucket(store, "quiet", hourH, 3)
	addBucket(store, "busy", hourH, 8)
	addBucket(store, "busy", hourH.Add(2*time.Hour), 4)
	eng := newTestEngine(t, store)

	subjects, err := eng.ListSubjects(context.Background())
	require.NoError(t, err)
	// addBucket gives every actor background activity on its own subject.
	require.Len(t, subjects, 3)
	assert.Equal(t, "background", subjects[0].SubjectID)
	assert.Equal(t, "busy", subjects[1].SubjectID)
	assert.Equal(t, int64(12), subjects[1].TotalEvents)
	assert.Equal(t, "quiet", subjects[2].SubjectID)
	assert.True(t, subjects[1].FirstEvent.Equal(hourH))
	assert.True(t, subjects[1].LastEvent.After(subjects[1].FirstEvent))
}

func TestProfile(t *testing.T) {
	store := NewMemStore()
	asOf := hourH.Add(24 * time.Hour)

	store.AddEntity("newbie", asOf.Add(-2*time.Hour))
	store.AddEvent("newbie", "s1", asOf.Add(-time.Hour))

	store.AddEntity("dormant", asOf.Add(-300*24*time.Hour))
	store.AddEvent("dormant", "s1", asOf.Add(-time.Hour))

	store.AddEntity("veteran", asOf.Add(-300*24*time.Hour))
	for i := 0; i < 8; i++ {
		store.AddEvent("veteran", "s1", asOf.Add(-time.Duration(i+1)*24*time.Hour))
	}

	eng := newTestEngine(t, store)
	ctx := context.Background()

	p, err := eng.Profile(ctx, "newbie", asOf)
	require.NoError(t, err)
	assert.Equal(t, ClassFreshAccount, p.Classification)
	assert.Equal(t, 50, p.Score)
	assert.Equal(t, 2*time.Hour, p.AccountAge)
	assert.Equal(t, int64(1), p.LifetimeEvents)

	p, err = eng.Profile(ctx, "dormant", asOf)
	require.NoError(t, err)
	assert.Equal(t, ClassSleeperPattern, p.Classification)
	assert.Equal(t, 40, p.Score)

	p, err = eng.Profile(ctx, "veteran", asOf)
	require.NoError(t, err)
	assert.Equal(t, ClassNormal, p.Classification)
	assert.Zero(t, p.Score)
	assert.Equal(t, int64(8), p.LifetimeEvents)

	_, err = eng.Profile(ctx, "nobody", asOf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummarizeUnknownSubject(t *testing.T) {
	eng := newTestEngine(t, NewMemStore())

	sum, err := eng.Summarize(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, sum.Exists)
	assert.Zero(t, sum.TotalEvents)
	assert.Nil(t, sum.PeakBucket)

	_, err = eng.Series(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
