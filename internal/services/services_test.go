package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	store     *repository.MemoryStore
	publisher *recordingPublisher
	providers *ProviderService
	jobs      *JobService
	offers    *OfferService
	ratings   *RatingService
}

func newFixture(t *testing.T, policy models.EndJobPolicy) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	publisher := &recordingPublisher{}
	logger := zap.NewNop()

	jobs := NewJobService(store, policy, publisher, logger)
	return &fixture{
		store:     store,
		publisher: publisher,
		providers: NewProviderService(store, publisher, logger),
		jobs:      jobs,
		offers:    NewOfferService(store, jobs, publisher, logger),
		ratings:   NewRatingService(store, publisher, logger),
	}
}

func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	provider, err := f.providers.RegisterProvider(context.Background(), models.ProviderRequest{Name: name})
	require.NoError(t, err)
	return provider.ID
}

func (f *fixture) createJob(t *testing.T, creatorId string) *models.Job {
	t.Helper()
	job, err := f.jobs.CreateJob(context.Background(), creatorId, models.JobRequest{
		Description: "draft a lease agreement",
		EndDate:     "2030-01-31",
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) makeOffer(t *testing.T, fromId, toId, jobId string) *models.Offer {
	t.Helper()
	offer, err := f.offers.MakeOffer(context.Background(), fromId, models.OfferRequest{ToProviderID: toId, JobID: jobId})
	require.NoError(t, err)
	return offer
}

func (f *fixture) status(t *testing.T, providerId string) models.ProviderStatus {
	t.Helper()
	profile, err := f.providers.GetProvider(context.Background(), providerId)
	require.NoError(t, err)
	return profile.Status
}

func requireKind(t *testing.T, err error, kind *models.ErrorResponse) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "expected %d, got %v", kind.StatusCode, err)
}
