// Package client exposes one function per projects endpoint of the backend:
// projects, their assets and their processes.
package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/apiclient"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

const (
	projectsPath = "projects"
	assetsPath   = "assets"
	processPath  = "processes"

	// UploadField is the multipart field the backend reads files from.
	UploadField = "files"
)

// Client is the projects resource client.
type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	var p domain.Project
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "projects.get",
		Method: http.MethodGet,
		Path:   []string{projectsPath, projectID},
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects fetches one page of projects, or the backend default when
// page is the zero value.
func (c *Client) ListProjects(ctx context.Context, page domain.Page) ([]domain.Project, error) {
	var out []domain.Project
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "projects.list",
		Method: http.MethodGet,
		Path:   []string{projectsPath},
		Query:  c.pageQuery("projects.list", page),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject sends req unvalidated and returns the stored project with
// its server-assigned id.
func (c *Client) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	var p domain.Project
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "projects.create",
		Method: http.MethodPost,
		Path:   []string{projectsPath},
		Body:   req,
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject deletes a project. Deleting a missing project returns an
// error matching apiclient.ErrNotFound.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.api.Do(ctx, apiclient.Request{
		Op:     "projects.delete",
		Method: http.MethodDelete,
		Path:   []string{projectsPath, projectID},
	}, nil)
}

// ListAssets fetches the asset metadata of a project.
func (c *Client) ListAssets(ctx context.Context, projectID string, page domain.Page) ([]domain.Asset, error) {
	var out []domain.Asset
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "assets.list",
		Method: http.MethodGet,
		Path:   []string{projectsPath, projectID, assetsPath},
		Query:  c.pageQuery("assets.list", page),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssetURL builds the public URL of an asset without any network call. An
// empty assetID yields a URL ending in "/assets/"; callers must check ids
// themselves.
func (c *Client) AssetURL(projectID, assetID string) string {
	return c.api.URL(projectsPath, projectID, assetsPath, assetID)
}

// FetchAssetFile downloads the raw content of an asset.
func (c *Client) FetchAssetFile(ctx context.Context, projectID, assetID string) ([]byte, error) {
	return c.api.DoBinary(ctx, apiclient.Request{
		Op:     "assets.download",
		Method: http.MethodGet,
		Path:   []string{projectsPath, projectID, assetsPath, assetID},
	})
}

// UploadAsset sends content as the single "files" part of a multipart form
// and returns the created asset metadata. Backends that only answer with a
// status message yield a nil asset and a nil error: the file was stored.
func (c *Client) UploadAsset(ctx context.Context, projectID, filename string, content io.Reader) (*domain.Asset, error) {
	var a domain.Asset
	err := c.api.Do(ctx, apiclient.Request{
		Op:           "assets.upload",
		Method:       http.MethodPost,
		Path:         []string{projectsPath, projectID, assetsPath},
		File:         &apiclient.File{Name: filename, Content: content},
		FileField:    UploadField,
		OptionalData: true,
	}, &a)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, nil
	}
	return &a, nil
}

// DeleteAsset deletes one asset of a project.
func (c *Client) DeleteAsset(ctx context.Context, projectID, assetID string) error {
	return c.api.Do(ctx, apiclient.Request{
		Op:     "assets.delete",
		Method: http.MethodDelete,
		Path:   []string{projectsPath, projectID, assetsPath, assetID},
	}, nil)
}

// ListProcesses fetches the processes of a project.
func (c *Client) ListProcesses(ctx context.Context, projectID string) ([]domain.Process, error) {
	var out []domain.Process
	err := c.api.Do(ctx, apiclient.Request{
		Op:     "processes.list",
		Method: http.MethodGet,
		Path:   []string{projectsPath, projectID, processPath},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// pageQuery returns page and page_size only when both are positive. A
// half-specified page is dropped and logged.
func (c *Client) pageQuery(op string, page domain.Page) url.Values {
	if page.Partial() {
		c.api.Logger().Warn("ignoring partial pagination",
			zap.String("op", op),
			zap.Int("page", page.Page),
			zap.Int("page_size", page.PageSize))
	}
	if !page.Valid() {
		return nil
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("page_size", strconv.Itoa(page.PageSize))
	return q
}
