package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProvider(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()

	provider, err := f.providers.RegisterProvider(ctx, models.ProviderRequest{Name: "  Anna Petrova "})
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", provider.Name)
	assert.Equal(t, models.AvailableProvider, provider.Status)

	profile, err := f.providers.GetProvider(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, provider.ID, profile.ID)
	assert.Zero(t, profile.StarRating)
	assert.Zero(t, profile.RatingNum)

	assert.Equal(t, []string{events.ProviderRegistered}, f.publisher.types())
}

func TestRegisterProvider_InvalidName(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)

	_, err := f.providers.RegisterProvider(context.Background(), models.ProviderRequest{Name: "   "})
	requireKind(t, err, models.ErrValidation)

	_, err = f.providers.RegisterProvider(context.Background(), models.ProviderRequest{Name: strings.Repeat("a", 101)})
	requireKind(t, err, models.ErrValidation)
}

func TestGetProvider_Errors(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)

	_, err := f.providers.GetProvider(context.Background(), "not-a-uuid")
	requireKind(t, err, models.ErrValidation)

	_, err = f.providers.GetProvider(context.Background(), uuid.NewString())
	requireKind(t, err, models.ErrNotFound)
}

func TestListAvailableProviders(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()

	creator := f.register(t, "Creator")
	busy := f.register(t, "Busy")
	free := f.register(t, "Free")

	job := f.createJob(t, creator)
	offer := f.makeOffer(t, creator, busy, job.ID)
	_, err := f.offers.AcceptOffer(ctx, offer.ID, busy)
	require.NoError(t, err)

	providers, err := f.providers.ListAvailableProviders(ctx, creator)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, free, providers[0].ID)

	providers, err = f.providers.ListAvailableProviders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, providers, 2)
}

func TestNonCanonicalIDs(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	ctx := context.Background()
	p1 := f.register(t, "P1")
	p2 := f.register(t, "P2")

	job, err := f.jobs.CreateJob(ctx, "{"+p1+"}", models.JobRequest{Description: "review a contract", EndDate: "2030-01-31"})
	require.NoError(t, err)
	assert.Equal(t, p1, job.CreatorID)

	_, err = f.jobs.CreateJob(ctx, "urn:uuid:"+p1, models.JobRequest{Description: "review a will", EndDate: "2030-01-31"})
	require.NoError(t, err)

	_, err = f.offers.MakeOffer(ctx, p1, models.OfferRequest{ToProviderID: strings.ToUpper(p1), JobID: job.ID})
	requireKind(t, err, models.ErrValidation)

	offer, err := f.offers.MakeOffer(ctx, strings.ToUpper(p1), models.OfferRequest{
		ToProviderID: strings.ToUpper(p2),
		JobID:        "{" + job.ID + "}",
	})
	require.NoError(t, err)
	assert.Equal(t, p1, offer.FromProviderID)
	assert.Equal(t, p2, offer.ToProviderID)
	assert.Equal(t, job.ID, offer.JobID)

	_, err = f.offers.AcceptOffer(ctx, strings.ToUpper(offer.ID), strings.ReplaceAll(p2, "-", ""))
	require.NoError(t, err)

	ended, err := f.jobs.EndJob(ctx, strings.ToUpper(job.ID), strings.ToUpper(p2))
	require.NoError(t, err)
	assert.Equal(t, models.EndedJob, ended.State)
	assert.Equal(t, models.AvailableProvider, f.status(t, p2))

	providers, err := f.providers.ListAvailableProviders(ctx, strings.ToUpper(p1))
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, p2, providers[0].ID)

	_, err = f.providers.ListAvailableProviders(ctx, "not-a-uuid")
	requireKind(t, err, models.ErrValidation)

	_, err = f.ratings.GiveRating(ctx, strings.ToUpper(p1), "urn:uuid:"+p2, models.RatingRequest{Rating: 4})
	require.NoError(t, err)
	aggregate, err := f.ratings.GetRating(ctx, strings.ToUpper(p2))
	require.NoError(t, err)
	assert.Equal(t, 1, aggregate.RatingNum)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, models.EndByAssignee)
	f.publisher.err = errors.New("redis is down")

	id := f.register(t, "Anna")
	assert.NotEmpty(t, id)
	assert.Len(t, f.publisher.types(), 1)
}
