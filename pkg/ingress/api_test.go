package ingress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cfoust/paintball/pkg/gameserver/mirror"
	"github.com/cfoust/paintball/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAPI(t *testing.T) {
	server, scoreboard, ctx := startGame(t)
	api := httptest.NewServer(NewAPI(server, scoreboard, nil))
	defer api.Close()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, api.URL+"/api/status", nil)
	require.NoError(t, err)
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&status))
	assert.Equal(t, "test", status.Status.Description)
	assert.Equal(t, []string{"pb_warehouse"}, status.Status.Maps)

	// Ratings are disabled without a database.
	response, err = http.Get(api.URL + "/api/ratings")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	response, err = http.Post(api.URL+"/api/status", "text/plain", nil)
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)
}

func TestRatingsAPI(t *testing.T) {
	db, err := state.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	for i, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&state.Rating{Name: name, Value: 1200 + i*10}).Error)
	}

	api := httptest.NewServer(NewAPI(nil, mirror.NewScoreboard(mirror.View{}), db))
	defer api.Close()

	response, err := http.Get(api.URL + "/api/ratings?limit=2")
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var ratings []state.Rating
	require.NoError(t, json.NewDecoder(response.Body).Decode(&ratings))
	require.Len(t, ratings, 2)
	assert.Equal(t, "carol", ratings[0].Name)
	assert.Equal(t, 1220, ratings[0].Value)
	assert.Equal(t, "bob", ratings[1].Name)

	response, err = http.Get(api.URL + "/api/ratings?limit=many")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	response, err = http.Get(api.URL + "/api/matches")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}
