package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phonefinder/internal/config"
	"phonefinder/internal/logging"
	"phonefinder/internal/service"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// NewRouter wires every HTTP route onto a fresh gin engine
func NewRouter(svc *service.RecommendService, server config.ServerConfig, info BuildInfo) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(server.AllowedOrigins, "*")
	corsConfig.AllowMethods = splitList(server.AllowedMethods, "GET,POST,OPTIONS")
	corsConfig.AllowHeaders = splitList(server.AllowedHeaders, "Content-Type,Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "phonefinder",
			"phones":     svc.CatalogSize(),
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recommendHandler := NewRecommendHandler(svc)
	feedbackHandler := NewFeedbackHandler(svc)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/recommend", recommendHandler.Recommend)
		apiV1.POST("/intent/normalize", recommendHandler.Normalize)
		apiV1.POST("/intent/count", recommendHandler.Count)
		apiV1.GET("/phones/:slug", recommendHandler.GetPhone)
		apiV1.GET("/recommendations/:id", recommendHandler.GetRecommendation)
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	return router
}

// requestLogger logs one line per request through zerolog
func requestLogger() gin.HandlerFunc {
	logger := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func splitList(s, fallback string) []string {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
