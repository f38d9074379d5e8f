package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/troopvault/tv-backend/internal/auth"
	"github.com/troopvault/tv-backend/internal/middleware"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/store"
)

type Server struct {
	store    DataStore
	auth     AuthService
	gate     *privileges.Gate
	resolver *privileges.Resolver
	queue    TaskEnqueuer
	payments PaymentLinker
	roster   RosterImporter
	validate *validator.Validate
}

func NewServer(
	dataStore DataStore,
	authService AuthService,
	gate *privileges.Gate,
	resolver *privileges.Resolver,
	queue TaskEnqueuer,
	payments PaymentLinker,
	rosterImporter RosterImporter,
) *Server {
	return &Server{
		store:    dataStore,
		auth:     authService,
		gate:     gate,
		resolver: resolver,
		queue:    queue,
		payments: payments,
		roster:   rosterImporter,
		validate: validator.New(),
	}
}

// Routes mounts all API handlers. Authentication and request-context
// middleware are applied by the caller around the whole router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/otp/request", s.RequestOTP)
		r.Post("/otp/verify", s.VerifyOTP)
		r.Post("/refresh", s.Refresh)
		r.Post("/logout", s.Logout)
	})

	r.Get("/privileges", s.GetCatalog)

	r.Route("/troops", func(r chi.Router) {
		r.Get("/", s.ListTroops)
		r.Route("/{troopID}", func(r chi.Router) {
			r.Get("/", s.GetTroop)
			r.Get("/dens", s.ListDens)
			r.Get("/members", s.ListMembers)
			r.Post("/roster/import", s.ImportRoster)
			r.Get("/audit", s.ListAuditEvents)

			r.Route("/members/{userID}", func(r chi.Router) {
				r.Get("/privileges", s.GetEffectivePrivileges)
				r.Put("/overrides/{code}", s.PutOverride)
				r.Delete("/overrides/{code}", s.DeleteOverride)
				r.Get("/sales", s.ListSales)
				r.Post("/sales", s.RecordSale)
				r.Post("/payment-link", s.GeneratePaymentLink)
			})
		})
	})

	return r
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorState is everything authorize learned about the requester, so
// handlers do not have to reload the membership row.
type actorState struct {
	User       *auth.AuthenticatedUser
	Membership store.Membership
	Overrides  []privileges.PrivilegeOverride
}

// authorize runs the full authorization pipeline for one request: resolve
// the authenticated user, load their membership in the troop, load their
// override rows and ask the gate. A nil error with a disallowed decision
// means the request must be answered with 401 or 403 via writeDecision.
func (s *Server) authorize(ctx context.Context, troopID uuid.UUID, requiredLevel int, code string, targetOwnerID uuid.UUID) (privileges.Decision, *actorState, error) {
	user, ok := auth.GetAuthenticatedUser(ctx)
	if !ok {
		return privileges.Decision{Effect: privileges.EffectUnauthenticated, Reason: "authentication required"}, nil, nil
	}

	membership, err := s.store.GetMembership(ctx, troopID, user.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return privileges.Decision{Effect: privileges.EffectForbidden, Reason: "not a member of this troop"}, nil, nil
	}
	if err != nil {
		return privileges.Decision{}, nil, err
	}

	rows, err := s.store.ListOverridesForMembership(ctx, membership.ID)
	if err != nil {
		return privileges.Decision{}, nil, err
	}
	overrides := toEngineOverrides(user.ID, rows)

	actor := &privileges.AuthContext{UserID: user.ID, TroopID: troopID, Role: privileges.UnitRole(membership.Role)}
	decision := s.gate.Authorize(ctx, actor, requiredLevel, code, overrides, targetOwnerID)

	return decision, &actorState{User: user, Membership: membership, Overrides: overrides}, nil
}

// toEngineOverrides converts stored override rows into engine inputs. Rows
// with an unparseable scope are skipped; the resolver handles unknown codes
// according to its policy.
func toEngineOverrides(memberID uuid.UUID, rows []store.PrivilegeOverride) []privileges.PrivilegeOverride {
	out := make([]privileges.PrivilegeOverride, 0, len(rows))
	for _, row := range rows {
		scope, err := privileges.ParseScope(row.Scope)
		if err != nil {
			continue
		}
		out = append(out, privileges.PrivilegeOverride{
			MemberID:      memberID,
			PrivilegeCode: row.PrivilegeCode,
			Scope:         scope,
		})
	}
	return out
}

// writeDecision maps a disallowed decision to its HTTP response.
func writeDecision(w http.ResponseWriter, d privileges.Decision) {
	switch d.Effect {
	case privileges.EffectUnauthenticated:
		writeError(w, http.StatusUnauthorized, Unauthorized(d.Reason))
	default:
		writeError(w, http.StatusForbidden, PermissionDenied(d.Reason))
	}
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	middleware.GetLoggerFromContext(r.Context()).Error(msg, "error", err)
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
