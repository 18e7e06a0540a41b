package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

func (h *Handler) createProject(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondDetail(c, http.StatusUnprocessableEntity, "name is required")
		return
	}

	id, err := domain.NewPublicID(domain.ProjectIDPrefix)
	if err != nil {
		h.respondStoreError(c, "projects.create", err)
		return
	}
	p := &domain.Project{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := h.store.CreateProject(c.Request.Context(), p); err != nil {
		h.respondStoreError(c, "projects.create", err)
		return
	}
	respondData(c, http.StatusCreated, p)
}

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.store.ListProjects(c.Request.Context(), pageParams(c))
	if err != nil {
		h.respondStoreError(c, "projects.list", err)
		return
	}
	respondData(c, http.StatusOK, items)
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.store.GetProject(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.respondStoreError(c, "projects.get", err)
		return
	}
	respondData(c, http.StatusOK, p)
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.store.DeleteProject(c.Request.Context(), c.Param("project_id")); err != nil {
		h.respondStoreError(c, "projects.delete", err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

func (h *Handler) listProcesses(c *gin.Context) {
	items, err := h.store.ListProcesses(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		h.respondStoreError(c, "processes.list", err)
		return
	}
	respondData(c, http.StatusOK, items)
}
