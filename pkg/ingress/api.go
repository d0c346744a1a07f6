package ingress

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"
	"github.com/cfoust/paintball/pkg/state"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const MAX_RATINGS = 100

var (
	STATUS_PATH_REGEX  = regexp.MustCompile(`^/api/status/?$`)
	RATINGS_PATH_REGEX = regexp.MustCompile(`^/api/ratings/?$`)
)

type StatusResponse struct {
	Status gameserver.Status `json:"status"`
	View   mirror.View       `json:"view"`
}

// API serves read-only information about the server over HTTP.
type API struct {
	server     *gameserver.Server
	scoreboard *mirror.Scoreboard
	// nil when match history is disabled
	db *gorm.DB
}

func NewAPI(server *gameserver.Server, scoreboard *mirror.Scoreboard, db *gorm.DB) *API {
	return &API{
		server:     server,
		scoreboard: scoreboard,
		db:         db,
	}
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	header := w.Header()
	header.Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, status, err := a.server.Snapshot(ctx)
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, StatusResponse{
		Status: status,
		View:   a.scoreboard.View(),
	})
}

func (a *API) ratings(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	limit := 10
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > MAX_RATINGS {
		limit = MAX_RATINGS
	}

	ratings, err := state.Ratings(a.db.WithContext(r.Context()), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load ratings")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, ratings)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch {
	case STATUS_PATH_REGEX.MatchString(r.URL.Path):
		a.status(w, r)
	case RATINGS_PATH_REGEX.MatchString(r.URL.Path):
		a.ratings(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
