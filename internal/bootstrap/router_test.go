package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/apiclient"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/processing"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/store"
	projectsclient "github.com/GoSim-25-26J-441/go-sim-client/internal/projects/client"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
	usersclient "github.com/GoSim-25-26J-441/go-sim-client/internal/users/client"
)

func newServer(t *testing.T, s store.Store) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(BuildRouter(RouterDeps{
		ServiceName: "test",
		Version:     "1.0.0",
		Store:       s,
		CORSOrigins: []string{"http://localhost:3000"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClients(t *testing.T, srv *httptest.Server, token string) (*projectsclient.Client, *usersclient.Client) {
	t.Helper()
	api, err := apiclient.New(srv.URL+APIPrefix, apiclient.WithBearerToken(token))
	require.NoError(t, err)
	return projectsclient.New(api), usersclient.New(api)
}

func stores(t *testing.T) map[string]store.Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]store.Store{
		"memory": store.NewMemoryStore(),
		"redis":  store.NewRedisStore(client),
	}
}

func TestEndToEnd(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			srv := newServer(t, s)
			projects, _ := newClients(t, srv, "")

			p, err := projects.CreateProject(ctx, domain.CreateProjectRequest{Name: "demo", Description: "e2e"})
			require.NoError(t, err)
			assert.Equal(t, "demo", p.Name)

			content := bytes.Repeat([]byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}, 1000)
			a, err := projects.UploadAsset(ctx, p.ID, "model.pdf", bytes.NewReader(content))
			require.NoError(t, err)
			assert.Equal(t, int64(len(content)), a.Size)

			got, err := projects.FetchAssetFile(ctx, p.ID, a.ID)
			require.NoError(t, err)
			assert.Equal(t, content, got)

			assets, err := projects.ListAssets(ctx, p.ID, domain.Page{Page: 1, PageSize: 10})
			require.NoError(t, err)
			require.Len(t, assets, 1)

			fetched, err := projects.GetProject(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{a.ID}, fetched.AssetIDs)
			assert.Len(t, fetched.ProcessIDs, 1)

			n, err := processing.NewScheduler(s, nil, "").RunOnce(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			procs, err := projects.ListProcesses(ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, procs, 1)
			assert.Equal(t, domain.StatusCompleted, procs[0].Status)

			require.NoError(t, projects.DeleteAsset(ctx, p.ID, a.ID))
			err = projects.DeleteAsset(ctx, p.ID, a.ID)
			assert.ErrorIs(t, err, apiclient.ErrNotFound)

			require.NoError(t, projects.DeleteProject(ctx, p.ID))
			_, err = projects.GetProject(ctx, p.ID)
			assert.ErrorIs(t, err, apiclient.ErrNotFound)
		})
	}
}

func TestEndToEnd_UploadRules(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, store.NewMemoryStore())
	projects, _ := newClients(t, srv, "")

	_, err := projects.UploadAsset(ctx, "missing", "a.pdf", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
	assert.ErrorContains(t, err, "Project not found")

	p, err := projects.CreateProject(ctx, domain.CreateProjectRequest{Name: "demo"})
	require.NoError(t, err)

	_, err = projects.UploadAsset(ctx, p.ID, "image.png", bytes.NewReader([]byte("x")))
	assert.ErrorContains(t, err, "The file image.png is not a PDF")
}

func TestEndToEnd_APIKeys(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	srv := newServer(t, s)
	_, alice := newClients(t, srv, "alice-token")
	_, bob := newClients(t, srv, "bob-token")

	require.NoError(t, alice.RequestAPIKey(ctx, "alice@example.com"))
	key, err := s.PendingAPIKey(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, alice.SaveAPIKey(ctx, key))
	got, err := alice.GetAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, got.APIKey)

	_, err = bob.GetAPIKey(ctx)
	assert.True(t, apiclient.IsNotFound(err))
}

func TestBuildRouter_HealthMetricsCORS(t *testing.T) {
	srv := newServer(t, store.NewMemoryStore())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+APIPrefix+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
