package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/store"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

const (
	uploadField   = "files"
	maxUploadSize = 32 << 20
)

func (h *Handler) listAssets(c *gin.Context) {
	items, err := h.store.ListAssets(c.Request.Context(), c.Param("project_id"), pageParams(c))
	if err != nil {
		h.respondStoreError(c, "assets.list", err)
		return
	}
	respondData(c, http.StatusOK, items)
}

type upload struct {
	asset   domain.Asset
	content []byte
}

// uploadAssets accepts one or more PDFs under "files". Every accepted file
// becomes an asset plus a pending process.
func (h *Handler) uploadAssets(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := c.Param("project_id")

	if _, err := h.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			respondDetail(c, http.StatusBadRequest, "Project not found")
			return
		}
		h.respondStoreError(c, "assets.upload", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, "multipart form required")
		return
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		respondDetail(c, http.StatusUnprocessableEntity, "field files is required")
		return
	}

	uploads := make([]upload, 0, len(files))
	for _, fh := range files {
		if !isPDF(fh) {
			respondDetail(c, http.StatusBadRequest, fmt.Sprintf("The file %s is not a PDF", fh.Filename))
			return
		}
		content, err := readPart(fh)
		if err != nil {
			respondDetail(c, http.StatusBadRequest, fmt.Sprintf("could not read %s", fh.Filename))
			return
		}
		uploads = append(uploads, upload{
			asset: domain.Asset{
				ProjectID:   projectID,
				Filename:    filepath.Base(fh.Filename),
				ContentType: "application/pdf",
			},
			content: content,
		})
	}

	created := make([]domain.Asset, 0, len(uploads))
	for i := range uploads {
		a := &uploads[i].asset
		if err := h.store.AddAsset(ctx, a, uploads[i].content); err != nil {
			h.respondStoreError(c, "assets.upload", err)
			return
		}
		if err := h.store.AddProcess(ctx, &domain.Process{ProjectID: projectID, AssetID: a.ID}); err != nil {
			h.respondStoreError(c, "assets.upload", err)
			return
		}
		created = append(created, *a)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    created[0],
		"assets":  created,
		"message": "Successfully uploaded the files",
	})
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return true
	}
	mt, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	return err == nil && mt == "application/pdf"
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// downloadAsset serves the raw bytes of an asset.
func (h *Handler) downloadAsset(c *gin.Context) {
	meta, content, err := h.store.GetAssetContent(c.Request.Context(), c.Param("project_id"), c.Param("asset_id"))
	if err != nil {
		h.respondStoreError(c, "assets.download", err)
		return
	}
	ct := meta.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": meta.Filename}))
	c.Data(http.StatusOK, ct, content)
}

func (h *Handler) deleteAsset(c *gin.Context) {
	if err := h.store.DeleteAsset(c.Request.Context(), c.Param("project_id"), c.Param("asset_id")); err != nil {
		h.respondStoreError(c, "assets.delete", err)
		return
	}
	respondData(c, http.StatusOK, nil)
}
