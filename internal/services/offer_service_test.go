package services

import (
	"context"
	"testing"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeOffer_Duplicate(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	p3 := f.register(t, "P3")
	job := f.createJob(t, p1)

	f.makeOffer(t, p1, p2, job.ID)
	_, err := f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: p2, JobID: job.ID})
	requireKind(t, err, models.ErrConflict)

	// Пока предложение не отклонено, другому юристу работу тоже не предложить.
	_, err = f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: p3, JobID: job.ID})
	requireKind(t, err, models.ErrConflict)

	sent, err := f.offers.ListSentOffers(ctx, p1, nil)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestMakeOffer_Errors(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	p3 := f.register(t, "P3")
	job := f.createJob(t, p1)

	_, err := f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: p1, JobID: job.ID})
	requireKind(t, err, models.ErrValidation)

	_, err = f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: p2, JobID: uuid.NewString()})
	requireKind(t, err, models.ErrNotFound)

	_, err = f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: uuid.NewString(), JobID: job.ID})
	requireKind(t, err, models.ErrNotFound)

	_, err = f.offers.MakeOffer(ctx, p3, models.OfferRequest{ToProviderID: p2, JobID: job.ID})
	requireKind(t, err, models.ErrForbidden)

	offer := f.makeOffer(t, p1, p2, job.ID)
	_, err = f.offers.AcceptOffer(ctx, offer.ID, p2)
	require.NoError(t, err)

	_, err = f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: p3, JobID: job.ID})
	requireKind(t, err, models.ErrConflict)
}

func TestAcceptOffer_Errors(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	job := f.createJob(t, p1)
	offer := f.makeOffer(t, p1, p2, job.ID)

	_, err := f.offers.AcceptOffer(ctx, uuid.NewString(), p2)
	requireKind(t, err, models.ErrNotFound)

	_, err = f.offers.AcceptOffer(ctx, offer.ID, p1)
	requireKind(t, err, models.ErrForbidden)

	_, err = f.offers.AcceptOffer(ctx, offer.ID, p2)
	require.NoError(t, err)

	_, err = f.offers.AcceptOffer(ctx, offer.ID, p2)
	requireKind(t, err, models.ErrConflict)

	_, err = f.offers.RejectOffer(ctx, offer.ID, p2)
	requireKind(t, err, models.ErrConflict)
	assert.ErrorContains(t, err, "is already accepted and can no longer change")
}

func TestAcceptOffer_RecipientAlreadyReserved(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	p3 := f.register(t, "P3")

	first := f.createJob(t, p1)
	second := f.createJob(t, p3)
	firstOffer := f.makeOffer(t, p1, p2, first.ID)
	secondOffer := f.makeOffer(t, p3, p2, second.ID)

	_, err := f.offers.AcceptOffer(ctx, firstOffer.ID, p2)
	require.NoError(t, err)

	_, err = f.offers.AcceptOffer(ctx, secondOffer.ID, p2)
	requireKind(t, err, models.ErrConflict)

	// Транзакция откатилась целиком.
	received, err := f.offers.ListReceivedOffers(ctx, p2, []string{string(models.WaitingOffer)})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, secondOffer.ID, received[0].ID)

	job, err := f.jobs.GetJobById(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpenJob, job.State)
	assert.Nil(t, job.AssignedProviderID)

	// После завершения первой работы юрист снова может принять предложение.
	_, err = f.jobs.EndJob(ctx, first.ID, p2)
	require.NoError(t, err)
	_, err = f.offers.AcceptOffer(ctx, secondOffer.ID, p2)
	require.NoError(t, err)
	assert.Equal(t, models.ReservedProvider, f.status(t, p2))
}

func TestRejectOfferScenario(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	p3 := f.register(t, "P3")
	job := f.createJob(t, p1)
	offer := f.makeOffer(t, p1, p2, job.ID)

	_, err := f.offers.RejectOffer(ctx, offer.ID, p1)
	requireKind(t, err, models.ErrForbidden)

	rejected, err := f.offers.RejectOffer(ctx, offer.ID, p2)
	require.NoError(t, err)
	assert.Equal(t, models.RejectedOffer, rejected.State)

	stored, err := f.jobs.GetJobById(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpenJob, stored.State)
	assert.Equal(t, models.AvailableProvider, f.status(t, p2))

	archive := f.store.RejectedOffers()
	require.Len(t, archive, 1)
	assert.Equal(t, offer.ID, archive[0].OfferID)
	assert.Equal(t, p1, archive[0].FromProviderID)
	assert.Equal(t, p2, archive[0].ToProviderID)
	assert.Equal(t, job.ID, archive[0].JobID)

	_, err = f.offers.RejectOffer(ctx, offer.ID, p2)
	requireKind(t, err, models.ErrConflict)

	// Работа осталась открытой, её можно предложить снова.
	next := f.makeOffer(t, p1, p3, job.ID)
	assert.Equal(t, models.WaitingOffer, next.State)
}

func TestWithdrawOffer(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")
	job := f.createJob(t, p1)
	offer := f.makeOffer(t, p1, p2, job.ID)

	requireKind(t, f.offers.WithdrawOffer(ctx, offer.ID, p2), models.ErrForbidden)
	require.NoError(t, f.offers.WithdrawOffer(ctx, offer.ID, p1))
	requireKind(t, f.offers.WithdrawOffer(ctx, offer.ID, p1), models.ErrNotFound)

	sent, err := f.offers.ListSentOffers(ctx, p1, nil)
	require.NoError(t, err)
	assert.Empty(t, sent)

	accepted := f.makeOffer(t, p1, p2, job.ID)
	_, err = f.offers.AcceptOffer(ctx, accepted.ID, p2)
	require.NoError(t, err)
	requireKind(t, f.offers.WithdrawOffer(ctx, accepted.ID, p1), models.ErrConflict)
}

func TestListOffers(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")

	first := f.createJob(t, p1)
	second := f.createJob(t, p1)
	rejected := f.makeOffer(t, p1, p2, first.ID)
	_, err := f.offers.RejectOffer(ctx, rejected.ID, p2)
	require.NoError(t, err)
	waiting := f.makeOffer(t, p1, p2, second.ID)

	sent, err := f.offers.ListSentOffers(ctx, p1, nil)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	for _, o := range sent {
		assert.Equal(t, "draft a lease agreement", o.JobDescription)
		assert.False(t, o.JobEndDate.IsZero())
	}

	received, err := f.offers.ListReceivedOffers(ctx, p2, []string{"waiting"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, waiting.ID, received[0].ID)

	received, err = f.offers.ListReceivedOffers(ctx, p2, []string{"rejected", "accepted"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, rejected.ID, received[0].ID)

	_, err = f.offers.ListReceivedOffers(ctx, p2, []string{"pending"})
	requireKind(t, err, models.ErrValidation)
}

// Юрист занят тогда и только тогда, когда ровно одна начатая работа назначена на него.
func TestReservedInvariant(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()

	ids := make([]string, 4)
	for i := range ids {
		ids[i] = f.register(t, "P")
	}

	check := func() {
		t.Helper()
		started := make(map[string]int)
		for _, creator := range ids {
			jobs, err := f.jobs.ListCreatedJobs(ctx, creator)
			require.NoError(t, err)
			for _, job := range jobs {
				if job.State == models.StartedJob {
					started[*job.AssignedProviderID]++
				}
			}
		}
		for _, id := range ids {
			reserved := f.status(t, id) == models.ReservedProvider
			if reserved {
				assert.Equal(t, 1, started[id], "provider %s", id)
			} else {
				assert.Zero(t, started[id], "provider %s", id)
			}
		}
	}

	jobA := f.createJob(t, ids[0])
	jobB := f.createJob(t, ids[1])
	jobC := f.createJob(t, ids[2])
	offerA := f.makeOffer(t, ids[0], ids[3], jobA.ID)
	offerB := f.makeOffer(t, ids[1], ids[3], jobB.ID)
	offerC := f.makeOffer(t, ids[2], ids[0], jobC.ID)
	check()

	_, err := f.offers.AcceptOffer(ctx, offerA.ID, ids[3])
	require.NoError(t, err)
	check()

	_, err = f.offers.AcceptOffer(ctx, offerB.ID, ids[3])
	requireKind(t, err, models.ErrConflict)
	check()

	_, err = f.offers.AcceptOffer(ctx, offerC.ID, ids[0])
	require.NoError(t, err)
	check()

	_, err = f.jobs.EndJob(ctx, jobA.ID, ids[3])
	require.NoError(t, err)
	check()

	_, err = f.offers.AcceptOffer(ctx, offerB.ID, ids[3])
	require.NoError(t, err)
	check()
}
