// internal/app/features/incentives/score.go
package incentives

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/campusworks/researchdesk/internal/app/policy/arpspolicy"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleScore computes the yearly ARPS breakdown from accepted claims and
// sanctioned EMR grants. Faculty score themselves; reviewer roles may pass
// ?user_id= to score anyone. GET /api/incentives/score.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := userID
	if s := r.URL.Query().Get("user_id"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.BadRequest(w, "invalid user_id")
			return
		}
		if id != userID {
			switch role {
			case authz.RoleAdmin, authz.RoleSuperAdmin, authz.RoleCRO:
			default:
				httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
				return
			}
		}
		target = id
	}

	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httpjson.BadRequest(w, "year must be a number")
			return
		}
		year = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	claims, err := h.Claims.AcceptedByUserYear(ctx, target, year)
	if err != nil {
		h.Log.Error("score claim lookup failed", zap.Error(err))
		httpjson.ServerError(w, "could not compute score")
		return
	}

	interests, err := h.EMR.SanctionedInYear(ctx, target, year)
	if err != nil {
		h.Log.Error("score grant lookup failed", zap.Error(err))
		httpjson.ServerError(w, "could not compute score")
		return
	}
	grants := make([]arpspolicy.EmrGrant, 0, len(interests))
	for _, in := range interests {
		grants = append(grants, arpspolicy.EmrGrant{
			SanctionedAmount: in.SanctionedAmount,
			IsPI:             in.IsPI,
		})
	}

	breakdown := arpspolicy.Compute(claims, grants)
	httpjson.OK(w, httpjson.Envelope{
		"user_id": target.Hex(),
		"year":    year,
		"score":   breakdown,
	})
}
