package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	latticehttp "github.com/aretw0/lattice/internal/adapters/http"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	wf := domain.NewWorkflow("wf-1", "http test")
	wf.AddNode(domain.Node{
		ID:       "src",
		Type:     "trigger",
		Position: domain.Point{X: 0, Y: 0},
		Outputs:  []string{"main"},
	})
	wf.AddNode(domain.Node{
		ID:       "dst",
		Type:     "action",
		Position: domain.Point{X: 400, Y: 100},
		Inputs:   []string{"main"},
	})
	_, err := wf.Connect(
		domain.PortRef{NodeID: "src", Port: "main"},
		domain.PortRef{NodeID: "dst", Port: "main"},
	)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), wf))

	srv := httptest.NewServer(latticehttp.NewHandler(store, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := nethttp.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestListAndGetWorkflow(t *testing.T) {
	srv, _ := seededServer(t)

	var list struct {
		Workflows []string `json:"workflows"`
	}
	code := getJSON(t, srv.URL+"/workflows", &list)
	assert.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, []string{"wf-1"}, list.Workflows)

	var wf domain.Workflow
	code = getJSON(t, srv.URL+"/workflows/wf-1", &wf)
	assert.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, wf.Nodes, 2)
	assert.Len(t, wf.Connections, 1)

	code = getJSON(t, srv.URL+"/workflows/ghost", nil)
	assert.Equal(t, nethttp.StatusNotFound, code)
}

func TestPutValidatesWorkflow(t *testing.T) {
	srv, store := seededServer(t)

	// A connection to a node that does not exist is rejected.
	bad := `{"name":"bad","nodes":[],"connections":[{"id":"c1","from":{"node":"nope","port":"main"},"to":{"node":"also-nope","port":"main"}}]}`
	req, err := nethttp.NewRequest(nethttp.MethodPut, srv.URL+"/workflows/wf-2", bytes.NewBufferString(bad))
	require.NoError(t, err)
	resp, err := nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)

	good := `{"name":"good","nodes":[{"id":"n1","type":"trigger","position":{"x":0,"y":0}}],"connections":[]}`
	req, err = nethttp.NewRequest(nethttp.MethodPut, srv.URL+"/workflows/wf-2", bytes.NewBufferString(good))
	require.NoError(t, err)
	resp, err = nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	// The path segment wins over any ID in the body.
	wf, err := store.Load(context.Background(), "wf-2")
	require.NoError(t, err)
	assert.Equal(t, "good", wf.Name)
}

func TestDeleteWorkflow(t *testing.T) {
	srv, store := seededServer(t)

	req, err := nethttp.NewRequest(nethttp.MethodDelete, srv.URL+"/workflows/wf-1", nil)
	require.NoError(t, err)
	resp, err := nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	_, err = store.Load(context.Background(), "wf-1")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestGeometryEndpoint(t *testing.T) {
	srv, _ := seededServer(t)

	var body struct {
		Connections []struct {
			ConnectionID   string       `json:"connection_id"`
			Path           string       `json:"path"`
			Midpoint       domain.Point `json:"midpoint"`
			HitStrokeWidth float64      `json:"hit_stroke_width"`
		} `json:"connections"`
	}
	code := getJSON(t, srv.URL+"/workflows/wf-1/geometry", &body)
	require.Equal(t, nethttp.StatusOK, code)
	require.Len(t, body.Connections, 1)

	c := body.Connections[0]
	assert.NotEmpty(t, c.ConnectionID)
	assert.Contains(t, c.Path, "M ")
	assert.Contains(t, c.Path, " C ")
	assert.Equal(t, 12.0, c.HitStrokeWidth)
	// Midpoint sits between the two node boxes.
	assert.Greater(t, c.Midpoint.X, 0.0)
	assert.Less(t, c.Midpoint.X, 400.0)
}

func TestNearestPortEndpoint(t *testing.T) {
	srv, _ := seededServer(t)

	// Right at the source output port (box right edge, first port row).
	var hit struct {
		Found bool `json:"found"`
		Port  struct {
			Node string  `json:"node"`
			X    float64 `json:"x"`
		} `json:"port"`
	}
	url := fmt.Sprintf("%s/workflows/wf-1/ports/nearest?x=%v&y=%v&radius=30", srv.URL, 182.0, 25.0)
	code := getJSON(t, url, &hit)
	require.Equal(t, nethttp.StatusOK, code)
	assert.True(t, hit.Found)
	assert.Equal(t, "src", hit.Port.Node)

	var miss struct {
		Found bool `json:"found"`
	}
	code = getJSON(t, srv.URL+"/workflows/wf-1/ports/nearest?x=5000&y=5000&radius=30", &miss)
	require.Equal(t, nethttp.StatusOK, code)
	assert.False(t, miss.Found)

	code = getJSON(t, srv.URL+"/workflows/wf-1/ports/nearest?x=abc&y=0", nil)
	assert.Equal(t, nethttp.StatusBadRequest, code)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv, _ := seededServer(t)

	assert.Equal(t, nethttp.StatusOK, getJSON(t, srv.URL+"/healthz", nil))
	assert.Equal(t, nethttp.StatusOK, getJSON(t, srv.URL+"/metrics", nil))
}
