package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"ihale.org/internal/admin"
	"ihale.org/internal/auction"
	"ihale.org/internal/auth"
	"ihale.org/internal/obs"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

// ReadyProbe reports backend readiness, pinging the database when one is
// configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth     *auth.Service
	users    user.Store
	auctions auction.Service
	tickets  ticket.Service
	admin    *admin.Service

	rateBurst  int
	ratePerSec int
}

// New wires every route. Authentication and authorization are enforced in
// middleware and per-handler role checks; the services behind the handlers
// assume an authorized caller.
func New(rp ReadyProbe, version string, authSvc *auth.Service, users user.Store, auctions auction.Service, tickets ticket.Service, adminSvc *admin.Service) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       authSvc,
		users:      users,
		auctions:   auctions,
		tickets:    tickets,
		admin:      adminSvc,
		rateBurst:  30,
		ratePerSec: 15,
	}

	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("GET /readyz", a.ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /api/auth/register", a.register)
	a.mux.HandleFunc("POST /api/auth/login", a.login)
	a.mux.HandleFunc("GET /api/auth/verify", a.currentUser)
	a.mux.HandleFunc("GET /api/auth/user", a.currentUser)

	a.mux.HandleFunc("GET /api/vehicles", a.listVehicles)
	a.mux.HandleFunc("POST /api/vehicles", a.createVehicle)
	a.mux.HandleFunc("GET /api/vehicles/{id}", a.getVehicle)
	a.mux.HandleFunc("PUT /api/vehicles/{id}", a.updateVehicle)
	a.mux.HandleFunc("DELETE /api/vehicles/{id}", a.deleteVehicle)
	a.mux.HandleFunc("POST /api/vehicles/end-auction/{id}", a.endAuction)

	a.mux.HandleFunc("POST /api/bids/{vehicleId}", a.placeBid)
	a.mux.HandleFunc("GET /api/bids/vehicle/{vehicleId}", a.bidsForVehicle)

	a.mux.HandleFunc("GET /api/tickets/my-tickets", a.myTickets)
	a.mux.HandleFunc("POST /api/tickets", a.buyTicket)
	a.mux.HandleFunc("POST /api/tickets/purchase", a.purchaseTicket)
	a.mux.HandleFunc("DELETE /api/tickets/refund/{id}", a.refundTicket)
	a.mux.HandleFunc("POST /api/tickets/use", a.useTicket)
	a.mux.HandleFunc("DELETE /api/tickets/cleanup", a.cleanupTickets)

	a.mux.HandleFunc("POST /api/rights/purchase", a.purchaseRights)

	a.mux.HandleFunc("GET /api/admin/dashboard-stats", a.adminDashboardStats)
	a.mux.HandleFunc("GET /api/admin/stats", a.adminStats)
	a.mux.HandleFunc("GET /api/admin/users", a.adminListUsers)
	a.mux.HandleFunc("PUT /api/admin/users/{id}", a.adminUpdateUser)
	a.mux.HandleFunc("DELETE /api/admin/users/{id}", a.adminDeleteUser)
	a.mux.HandleFunc("GET /api/admin/vehicles", a.adminListVehicles)
	a.mux.HandleFunc("GET /api/admin/auctions", a.adminListAuctions)
	a.mux.HandleFunc("GET /api/admin/tickets", a.adminListTickets)
	a.mux.HandleFunc("GET /api/admin/reports", a.adminReports)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "ihale-api",
		"version": a.version,
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
