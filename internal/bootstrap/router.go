package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mockhttp "github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/http"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/mockapi/store"
)

// APIPrefix is the path the resource routes are mounted under. It matches
// the default API_BASE_URL of the client.
const APIPrefix = "/v1"

type RouterDeps struct {
	ServiceName string
	Version     string
	Store       store.Store
	Logger      *zap.Logger
	CORSOrigins []string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mockhttp.RequestID(logger))

	metrics := mockhttp.NewMetrics()
	r.Use(metrics.Middleware())

	if len(dep.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = dep.CORSOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-Id", "X-User-Id")
		cfg.ExposeHeaders = []string{"X-Request-Id", "Content-Disposition"}
		r.Use(cors.New(cfg))
	}

	healthHandler := mockhttp.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	api := r.Group(APIPrefix)
	api.Use(mockhttp.OptionalUser())

	mockhttp.New(dep.Store, logger).Register(api)

	return r
}
