package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proptalk/proptalk/internal/model"
)

func TestFunnelLifecycle(t *testing.T) {
	stack := newTestStack(t, &scriptedAI{})

	// Creating without a body starts a default-named funnel for the
	// default user.
	w := postJSON(t, stack, "/api/v1/funnels", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var first model.SearchFunnel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "New Search", first.Name)
	assert.NotEmpty(t, first.ID)

	w = postJSON(t, stack, "/api/v1/funnels", `{"name": "Whitefield Hunt"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var second model.SearchFunnel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, "Whitefield Hunt", second.Name)

	// The newest funnel becomes active.
	w = getPath(t, stack, "/api/v1/funnels/active")
	require.Equal(t, http.StatusOK, w.Code)
	var active model.SearchFunnel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.Equal(t, second.ID, active.ID)

	w = getPath(t, stack, "/api/v1/funnels")
	require.Equal(t, http.StatusOK, w.Code)
	var list model.FunnelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Funnels, 2)
	assert.Equal(t, second.ID, list.ActiveFunnelID)

	// Switch back to the first funnel.
	w = postJSON(t, stack, "/api/v1/funnels/"+first.ID+"/activate", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.Equal(t, first.ID, active.ID)
}

func TestActivateUnknownFunnel(t *testing.T) {
	stack := newTestStack(t, &scriptedAI{})

	// Touch the default user so the lookup fails on the funnel, not the user.
	_, err := stack.profiles.GetOrCreateUser(context.Background(), "user_001", "")
	require.NoError(t, err)

	w := postJSON(t, stack, "/api/v1/funnels/nope/activate", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "Funnel not found", envelope.Error.Message)
}

func TestActivateForUnknownUser(t *testing.T) {
	stack := newTestStack(t, &scriptedAI{})

	w := postJSON(t, stack, "/api/v1/funnels/nope/activate", `{"user_id": "ghost"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestActiveResultsEndpoint(t *testing.T) {
	stack := newTestStack(t, &scriptedAI{})

	funnel, err := stack.profiles.ActiveFunnel(context.Background(), "user_001")
	require.NoError(t, err)
	_, err = stack.profiles.UpdateCriteria(context.Background(), "user_001", funnel.ID, model.CriteriaMap{
		"keywords": []interface{}{"whitefield"},
	})
	require.NoError(t, err)

	w := getPath(t, stack, "/api/v1/funnels/active/results")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Funnel  *model.SearchFunnel    `json:"funnel"`
		Results []model.ScoredProperty `json:"results"`
		Total   int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Funnel)
	assert.Equal(t, funnel.ID, resp.Funnel.ID)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Prestige Park Grove", resp.Results[0].ProjectName)
}

func TestFunnelsForExplicitUser(t *testing.T) {
	stack := newTestStack(t, &scriptedAI{})

	w := postJSON(t, stack, "/api/v1/funnels", `{"user_id": "visitor_9", "name": "Villas"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = getPath(t, stack, "/api/v1/funnels?user_id=visitor_9")
	require.Equal(t, http.StatusOK, w.Code)
	var list model.FunnelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Funnels, 1)
	assert.Equal(t, "Villas", list.Funnels[0].Name)

	// The default user is untouched.
	w = getPath(t, stack, "/api/v1/funnels")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Funnels)
}
