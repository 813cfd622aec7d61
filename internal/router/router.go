package router

import (
	"net/http"

	"github.com/senyabanana/lawyer-service/internal/handlers"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Providers *handlers.ProviderHandler
	Jobs      *handlers.JobHandler
	Offers    *handlers.OfferHandler
	Ratings   *handlers.RatingHandler
}

func InitRoutes(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/providers", h.Providers.RegisterProvider)
	mux.HandleFunc("GET /api/providers/available", h.Providers.ListAvailableProviders)
	mux.HandleFunc("GET /api/providers/{providerId}", h.Providers.GetProvider)

	mux.HandleFunc("POST /api/jobs", h.Jobs.CreateJob)
	mux.HandleFunc("GET /api/jobs/my", h.Jobs.GetUserJobs)
	mux.HandleFunc("GET /api/jobs/{jobId}", h.Jobs.GetJob)
	mux.HandleFunc("PUT /api/jobs/{jobId}/end", h.Jobs.EndJob)

	mux.HandleFunc("POST /api/offers", h.Offers.MakeOffer)
	mux.HandleFunc("GET /api/offers/sent", h.Offers.GetSentOffers)
	mux.HandleFunc("GET /api/offers/received", h.Offers.GetReceivedOffers)
	mux.HandleFunc("PUT /api/offers/{offerId}/accept", h.Offers.AcceptOffer)
	mux.HandleFunc("PUT /api/offers/{offerId}/reject", h.Offers.RejectOffer)
	mux.HandleFunc("DELETE /api/offers/{offerId}", h.Offers.WithdrawOffer)

	mux.HandleFunc("POST /api/ratings/{providerId}", h.Ratings.GiveRating)
	mux.HandleFunc("GET /api/ratings/{providerId}", h.Ratings.GetRating)

	return mux
}
