package api

import (
	"net/http"
	"strings"

	"campus-ride/internal/ride/domain"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

var feedTables = map[string]bool{
	domain.TableRides:      true,
	domain.TableTrainPosts: true,
	domain.TableRequests:   true,
	domain.TableBookings:   true,
	domain.TableRatings:    true,
	domain.TableProfiles:   true,
}

// ChangesWS streams change signals for ?tables=a,b (all ride tables by
// default). Clients re-fetch the affected listing on each signal.
func (h *Handler) ChangesWS(w http.ResponseWriter, r *http.Request) {
	instance := "RideWS.Changes"

	tables, ok := parseTables(r.URL.Query().Get("tables"))
	if !ok {
		util.WriteJSONError(w, "unknown table in tables parameter", http.StatusBadRequest)
		return
	}

	sess, err := realtime.Accept(w, r, h.tokens)
	if err != nil {
		h.logger.Warn(instance, err.Error())
		return
	}
	defer sess.Close()

	sub := h.hub.Subscribe(tables...)
	defer sub.Close()

	h.logger.Info(instance, "change feed opened for user "+sess.UserID)
	err = sess.Run(r.Context(), sub, func(c realtime.Change) error {
		return sess.Send(realtime.ChangeMessage(c))
	})
	if err != nil {
		h.logger.Warn(instance, "change feed closed: "+err.Error())
	}
}

func parseTables(raw string) ([]string, bool) {
	if strings.TrimSpace(raw) == "" {
		out := make([]string, 0, len(feedTables))
		for t := range feedTables {
			out = append(out, t)
		}
		return out, true
	}

	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if !feedTables[t] {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}
