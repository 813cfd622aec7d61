package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"
)

type edgeKey struct {
	from, to string
}

type memoryState struct {
	providers  map[string]models.Provider
	jobs       map[string]models.Job
	offers     map[string]models.Offer
	rejected   []models.ArchivedOffer
	edges      map[edgeKey]models.RatingEdge
	aggregates map[string]models.RatingAggregate
}

func newMemoryState() *memoryState {
	return &memoryState{
		providers:  make(map[string]models.Provider),
		jobs:       make(map[string]models.Job),
		offers:     make(map[string]models.Offer),
		edges:      make(map[edgeKey]models.RatingEdge),
		aggregates: make(map[string]models.RatingAggregate),
	}
}

// Записи хранятся по значению, поэтому поверхностной копии карт достаточно.
func (s *memoryState) clone() *memoryState {
	return &memoryState{
		providers:  maps.Clone(s.providers),
		jobs:       maps.Clone(s.jobs),
		offers:     maps.Clone(s.offers),
		rejected:   append([]models.ArchivedOffer(nil), s.rejected...),
		edges:      maps.Clone(s.edges),
		aggregates: maps.Clone(s.aggregates),
	}
}

// MemoryStore - реализация Store в памяти процесса.
// Транзакции выполняются строго по очереди над копией состояния.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

// NewMemoryStore создает пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

// InTx выполняет fn над копией состояния и публикует копию, если fn не вернула ошибку.
func (s *MemoryStore) InTx(ctx context.Context, fn func(r Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return mapStoreError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(memoryRepositories(&memoryLedger{tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return mapStoreError(err)
	}
	s.state = work
	return nil
}

// Repositories возвращает репозитории, каждая операция которых атомарна сама по себе.
func (s *MemoryStore) Repositories() Repositories {
	return memoryRepositories(&memoryLedger{store: s})
}

// RejectedOffers возвращает архив отклонённых предложений.
func (s *MemoryStore) RejectedOffers() []models.ArchivedOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ArchivedOffer(nil), s.state.rejected...)
}

func memoryRepositories(l *memoryLedger) Repositories {
	return Repositories{Providers: l, Jobs: l, Offers: l, Ratings: l}
}

// memoryLedger реализует все репозитории поверх memoryState.
// Внутри транзакции tx уже защищено блокировкой InTx.
type memoryLedger struct {
	store *MemoryStore
	tx    *memoryState
}

func (l *memoryLedger) read(fn func(st *memoryState)) {
	if l.tx != nil {
		fn(l.tx)
		return
	}
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()
	fn(l.store.state)
}

func (l *memoryLedger) write(fn func(st *memoryState) error) error {
	if l.tx != nil {
		return fn(l.tx)
	}
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	work := l.store.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	l.store.state = work
	return nil
}

// CreateProvider добавляет юриста.
func (l *memoryLedger) CreateProvider(_ context.Context, provider models.Provider) error {
	return l.write(func(st *memoryState) error {
		if _, ok := st.providers[provider.ID]; ok {
			return models.NewConflict("provider %s already exists", provider.ID)
		}
		st.providers[provider.ID] = provider
		return nil
	})
}

// GetProvider возвращает юриста по ID.
func (l *memoryLedger) GetProvider(_ context.Context, providerId string) (*models.Provider, error) {
	var (
		provider models.Provider
		ok       bool
	)
	l.read(func(st *memoryState) { provider, ok = st.providers[providerId] })
	if !ok {
		return nil, models.NewNotFound("provider %s not found", providerId)
	}
	return &provider, nil
}

// GetProviderForUpdate совпадает с GetProvider: транзакции и так идут по очереди.
func (l *memoryLedger) GetProviderForUpdate(ctx context.Context, providerId string) (*models.Provider, error) {
	return l.GetProvider(ctx, providerId)
}

// SetProviderStatus меняет статус юриста, если текущий статус равен from.
func (l *memoryLedger) SetProviderStatus(_ context.Context, providerId string, from, to models.ProviderStatus) error {
	return l.write(func(st *memoryState) error {
		provider, ok := st.providers[providerId]
		if !ok || provider.Status != from {
			return models.NewConflict("provider %s is not %s", providerId, from)
		}
		provider.Status = to
		st.providers[providerId] = provider
		return nil
	})
}

// ListAvailableProviders возвращает свободных юристов, кроме excludeId.
func (l *memoryLedger) ListAvailableProviders(_ context.Context, excludeId string) ([]models.Provider, error) {
	providers := make([]models.Provider, 0)
	l.read(func(st *memoryState) {
		for _, p := range st.providers {
			if p.Status == models.AvailableProvider && p.ID != excludeId {
				providers = append(providers, p)
			}
		}
	})
	sort.Slice(providers, func(i, j int) bool {
		if providers[i].Name != providers[j].Name {
			return providers[i].Name < providers[j].Name
		}
		return providers[i].ID < providers[j].ID
	})
	return providers, nil
}

// CreateJob создает новую работу.
func (l *memoryLedger) CreateJob(_ context.Context, job models.Job) error {
	return l.write(func(st *memoryState) error {
		if _, ok := st.providers[job.CreatorID]; !ok {
			return models.NewNotFound("provider %s not found", job.CreatorID)
		}
		st.jobs[job.ID] = job
		return nil
	})
}

// GetJob возвращает работу по ID.
func (l *memoryLedger) GetJob(_ context.Context, jobId string) (*models.Job, error) {
	var (
		job models.Job
		ok  bool
	)
	l.read(func(st *memoryState) { job, ok = st.jobs[jobId] })
	if !ok {
		return nil, models.NewNotFound("job %s not found", jobId)
	}
	return &job, nil
}

// GetJobForUpdate совпадает с GetJob.
func (l *memoryLedger) GetJobForUpdate(ctx context.Context, jobId string) (*models.Job, error) {
	return l.GetJob(ctx, jobId)
}

// StartJob назначает исполнителя и переводит работу из open в started.
func (l *memoryLedger) StartJob(_ context.Context, jobId, providerId string, startedAt time.Time) error {
	return l.write(func(st *memoryState) error {
		job, ok := st.jobs[jobId]
		if !ok || job.State != models.OpenJob {
			return models.NewConflict("job %s is not open", jobId)
		}
		job.AssignedProviderID = &providerId
		job.StartDate = &startedAt
		job.State = models.StartedJob
		st.jobs[jobId] = job
		return nil
	})
}

// EndJob переводит работу из started в ended.
func (l *memoryLedger) EndJob(_ context.Context, jobId string, endedAt time.Time) error {
	return l.write(func(st *memoryState) error {
		job, ok := st.jobs[jobId]
		if !ok || job.State != models.StartedJob {
			return models.NewConflict("job %s is not started", jobId)
		}
		job.EndDate = endedAt
		job.State = models.EndedJob
		st.jobs[jobId] = job
		return nil
	})
}

// ListCreatedJobs возвращает работы, созданные юристом.
func (l *memoryLedger) ListCreatedJobs(_ context.Context, creatorId string) ([]models.Job, error) {
	jobs := make([]models.Job, 0)
	l.read(func(st *memoryState) {
		for _, j := range st.jobs {
			if j.CreatorID == creatorId {
				jobs = append(jobs, j)
			}
		}
	})
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

// CreateOffer создает новое предложение.
func (l *memoryLedger) CreateOffer(_ context.Context, offer models.Offer) error {
	return l.write(func(st *memoryState) error {
		if _, ok := st.jobs[offer.JobID]; !ok {
			return models.NewNotFound("job %s not found", offer.JobID)
		}
		if hasActiveOffer(st, offer.FromProviderID, offer.JobID) {
			return models.NewConflict("job %s has already been offered", offer.JobID)
		}
		st.offers[offer.ID] = offer
		return nil
	})
}

// GetOfferForUpdate возвращает предложение по ID. Блокировкой служит мьютекс хранилища.
func (l *memoryLedger) GetOfferForUpdate(_ context.Context, offerId string) (*models.Offer, error) {
	var (
		offer models.Offer
		ok    bool
	)
	l.read(func(st *memoryState) { offer, ok = st.offers[offerId] })
	if !ok {
		return nil, models.NewNotFound("offer %s not found", offerId)
	}
	return &offer, nil
}

// HasActiveOffer проверяет, есть ли у автора ожидающее или принятое предложение по работе.
func (l *memoryLedger) HasActiveOffer(_ context.Context, fromId, jobId string) (bool, error) {
	var exists bool
	l.read(func(st *memoryState) { exists = hasActiveOffer(st, fromId, jobId) })
	return exists, nil
}

func hasActiveOffer(st *memoryState, fromId, jobId string) bool {
	for _, o := range st.offers {
		if o.FromProviderID == fromId && o.JobID == jobId && o.State.IsActive() {
			return true
		}
	}
	return false
}

// SetOfferState меняет состояние предложения, если текущее состояние равно from.
func (l *memoryLedger) SetOfferState(_ context.Context, offerId string, from, to models.OfferState) error {
	return l.write(func(st *memoryState) error {
		offer, ok := st.offers[offerId]
		if !ok || offer.State != from {
			return models.NewConflict("offer %s is not %s", offerId, from)
		}
		offer.State = to
		st.offers[offerId] = offer
		return nil
	})
}

// ArchiveRejectedOffer добавляет запись в архив отклонённых предложений.
func (l *memoryLedger) ArchiveRejectedOffer(_ context.Context, rejected models.ArchivedOffer) error {
	return l.write(func(st *memoryState) error {
		st.rejected = append(st.rejected, rejected)
		return nil
	})
}

// DeleteOffer удаляет предложение, если оно находится в состоянии state.
func (l *memoryLedger) DeleteOffer(_ context.Context, offerId string, state models.OfferState) error {
	return l.write(func(st *memoryState) error {
		offer, ok := st.offers[offerId]
		if !ok || offer.State != state {
			return models.NewConflict("offer %s is not %s", offerId, state)
		}
		delete(st.offers, offerId)
		return nil
	})
}

// ListSentOffers возвращает предложения, отправленные юристом.
func (l *memoryLedger) ListSentOffers(_ context.Context, fromId string, states []models.OfferState) ([]models.OfferSummary, error) {
	return l.listOffers(func(o models.Offer) bool { return o.FromProviderID == fromId }, states), nil
}

// ListReceivedOffers возвращает предложения, полученные юристом.
func (l *memoryLedger) ListReceivedOffers(_ context.Context, toId string, states []models.OfferState) ([]models.OfferSummary, error) {
	return l.listOffers(func(o models.Offer) bool { return o.ToProviderID == toId }, states), nil
}

func (l *memoryLedger) listOffers(match func(models.Offer) bool, states []models.OfferState) []models.OfferSummary {
	offers := make([]models.OfferSummary, 0)
	l.read(func(st *memoryState) {
		for _, o := range st.offers {
			if !match(o) || (len(states) > 0 && !containsState(states, o.State)) {
				continue
			}
			job := st.jobs[o.JobID]
			offers = append(offers, models.OfferSummary{
				Offer:          o,
				JobDescription: job.Description,
				JobEndDate:     job.EndDate,
			})
		}
	})
	sort.Slice(offers, func(i, j int) bool {
		if !offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].CreatedAt.Before(offers[j].CreatedAt)
		}
		return offers[i].ID < offers[j].ID
	})
	return offers
}

func containsState(states []models.OfferState, s models.OfferState) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

// CreateAggregate заводит пустой рейтинг юриста.
func (l *memoryLedger) CreateAggregate(_ context.Context, providerId string) error {
	return l.write(func(st *memoryState) error {
		if _, ok := st.aggregates[providerId]; ok {
			return models.NewConflict("rating of provider %s already exists", providerId)
		}
		st.aggregates[providerId] = models.RatingAggregate{ProviderID: providerId}
		return nil
	})
}

// GetAggregate возвращает рейтинг юриста.
func (l *memoryLedger) GetAggregate(_ context.Context, providerId string) (*models.RatingAggregate, error) {
	var (
		aggregate models.RatingAggregate
		ok        bool
	)
	l.read(func(st *memoryState) { aggregate, ok = st.aggregates[providerId] })
	if !ok {
		return nil, models.NewNotFound("rating of provider %s not found", providerId)
	}
	return &aggregate, nil
}

// GetAggregateForUpdate совпадает с GetAggregate.
func (l *memoryLedger) GetAggregateForUpdate(ctx context.Context, providerId string) (*models.RatingAggregate, error) {
	return l.GetAggregate(ctx, providerId)
}

// SaveAggregate записывает пересчитанный рейтинг.
func (l *memoryLedger) SaveAggregate(_ context.Context, aggregate models.RatingAggregate) error {
	return l.write(func(st *memoryState) error {
		if _, ok := st.aggregates[aggregate.ProviderID]; !ok {
			return models.NewNotFound("rating of provider %s not found", aggregate.ProviderID)
		}
		st.aggregates[aggregate.ProviderID] = aggregate
		return nil
	})
}

// GetEdge возвращает оценку fromId для toId, nil если оценки ещё нет.
func (l *memoryLedger) GetEdge(_ context.Context, fromId, toId string) (*models.RatingEdge, error) {
	var (
		edge models.RatingEdge
		ok   bool
	)
	l.read(func(st *memoryState) { edge, ok = st.edges[edgeKey{fromId, toId}] })
	if !ok {
		return nil, nil
	}
	return &edge, nil
}

// UpsertEdge добавляет оценку или заменяет прежнюю оценку того же автора.
func (l *memoryLedger) UpsertEdge(_ context.Context, edge models.RatingEdge) error {
	return l.write(func(st *memoryState) error {
		st.edges[edgeKey{edge.FromProviderID, edge.ToProviderID}] = edge
		return nil
	})
}
