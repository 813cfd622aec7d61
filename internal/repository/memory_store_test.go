package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(name string) models.Provider {
	return models.Provider{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    models.AvailableProvider,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_CommitAndRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	committed := newProvider("committed")
	rolledBack := newProvider("rolled back")

	err := store.InTx(ctx, func(r Repositories) error {
		return r.Providers.CreateProvider(ctx, committed)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.InTx(ctx, func(r Repositories) error {
		require.NoError(t, r.Providers.CreateProvider(ctx, rolledBack))
		require.NoError(t, r.Providers.SetProviderStatus(ctx, committed.ID, models.AvailableProvider, models.ReservedProvider))

		// Внутри транзакции изменения видны.
		p, err := r.Providers.GetProvider(ctx, committed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReservedProvider, p.Status)
		return boom
	})
	require.ErrorIs(t, err, boom)

	r := store.Repositories()
	_, err = r.Providers.GetProvider(ctx, rolledBack.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	p, err := r.Providers.GetProvider(ctx, committed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailableProvider, p.Status)
}

func TestMemoryStore_ExpiredContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	called := false
	err := store.InTx(ctx, func(Repositories) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, models.IsRetryable(err))
}

func TestMemoryStore_ConditionalUpdates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	r := store.Repositories()

	creator := newProvider("creator")
	assignee := newProvider("assignee")
	require.NoError(t, r.Providers.CreateProvider(ctx, creator))
	require.NoError(t, r.Providers.CreateProvider(ctx, assignee))
	assert.ErrorIs(t, r.Providers.CreateProvider(ctx, creator), models.ErrConflict)

	assert.ErrorIs(t,
		r.Providers.SetProviderStatus(ctx, assignee.ID, models.ReservedProvider, models.AvailableProvider),
		models.ErrConflict)

	job := models.Job{
		ID:          uuid.NewString(),
		CreatorID:   creator.ID,
		Description: "contract review",
		EndDate:     time.Now().Add(24 * time.Hour).UTC(),
		State:       models.OpenJob,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, r.Jobs.CreateJob(ctx, job))

	orphan := job
	orphan.ID = uuid.NewString()
	orphan.CreatorID = uuid.NewString()
	assert.ErrorIs(t, r.Jobs.CreateJob(ctx, orphan), models.ErrNotFound)

	assert.ErrorIs(t, r.Jobs.EndJob(ctx, job.ID, time.Now()), models.ErrConflict)
	require.NoError(t, r.Jobs.StartJob(ctx, job.ID, assignee.ID, time.Now()))
	assert.ErrorIs(t, r.Jobs.StartJob(ctx, job.ID, assignee.ID, time.Now()), models.ErrConflict)

	offer := models.Offer{
		ID:             uuid.NewString(),
		FromProviderID: creator.ID,
		ToProviderID:   assignee.ID,
		JobID:          job.ID,
		State:          models.WaitingOffer,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, r.Offers.CreateOffer(ctx, offer))
	duplicate := offer
	duplicate.ID = uuid.NewString()
	assert.ErrorIs(t, r.Offers.CreateOffer(ctx, duplicate), models.ErrConflict)

	active, err := r.Offers.HasActiveOffer(ctx, creator.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, r.Offers.SetOfferState(ctx, offer.ID, models.WaitingOffer, models.RejectedOffer))
	assert.ErrorIs(t, r.Offers.SetOfferState(ctx, offer.ID, models.WaitingOffer, models.AcceptedOffer), models.ErrConflict)
	assert.ErrorIs(t, r.Offers.DeleteOffer(ctx, offer.ID, models.WaitingOffer), models.ErrConflict)

	active, err = r.Offers.HasActiveOffer(ctx, creator.ID, job.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMemoryStore_Ratings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	r := store.Repositories()

	_, err := r.Ratings.GetAggregate(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, r.Ratings.SaveAggregate(ctx, models.RatingAggregate{ProviderID: "missing"}), models.ErrNotFound)

	require.NoError(t, r.Ratings.CreateAggregate(ctx, "p"))
	assert.ErrorIs(t, r.Ratings.CreateAggregate(ctx, "p"), models.ErrConflict)

	edge, err := r.Ratings.GetEdge(ctx, "a", "p")
	require.NoError(t, err)
	assert.Nil(t, edge)

	require.NoError(t, r.Ratings.UpsertEdge(ctx, models.RatingEdge{FromProviderID: "a", ToProviderID: "p", Rating: 2}))
	require.NoError(t, r.Ratings.UpsertEdge(ctx, models.RatingEdge{FromProviderID: "a", ToProviderID: "p", Rating: 4}))

	edge, err = r.Ratings.GetEdge(ctx, "a", "p")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, 4, edge.Rating)
}

func TestMemoryStore_ConcurrentTransactions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Repositories().Ratings.CreateAggregate(ctx, "p"))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.InTx(ctx, func(r Repositories) error {
				a, err := r.Ratings.GetAggregateForUpdate(ctx, "p")
				if err != nil {
					return err
				}
				return r.Ratings.SaveAggregate(ctx, a.Apply(nil, 5))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, err := store.Repositories().Ratings.GetAggregate(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, writers, a.RatingNum)
	assert.Equal(t, 5.0, a.StarRating)
}

func TestTxConfigAttempts(t *testing.T) {
	assert.Equal(t, 1, TxConfig{}.attempts())
	assert.Equal(t, 1, TxConfig{MaxAttempts: -3}.attempts())
	assert.Equal(t, 4, TxConfig{MaxAttempts: 4}.attempts())
}
