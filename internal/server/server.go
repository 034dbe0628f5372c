// Package server exposes recommendations and run history over HTTP.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"deck-recommender/internal/utils"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/recommend"
	"deck-recommender/pkg/storage"
)

// DefaultTimeout bounds one recommend request when the body sets no timeout.
const DefaultTimeout = 30 * time.Second

type Server struct {
	Tables  *masterdata.Tables
	User    *masterdata.User
	History *storage.DB // nil disables history
	Timeout time.Duration
}

func New(tables *masterdata.Tables, user *masterdata.User, history *storage.DB) *Server {
	return &Server{
		Tables:  tables,
		User:    user,
		History: history,
		Timeout: DefaultTimeout,
	}
}

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "deckrec_http_requests_total",
	Help: "HTTP requests by route and status code.",
}, []string{"route", "code"})

// NewRegistry returns a registry holding the HTTP and recommendation metrics.
func NewRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := recommend.RegisterMetrics(reg); err != nil {
		return nil, err
	}
	if err := reg.Register(requestsTotal); err != nil {
		return nil, err
	}
	return reg, nil
}

// jsonSerializer routes echo's JSON through goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON: "+err.Error()).SetInternal(err)
	}
	return nil
}

func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		code := c.Response().Status
		requestsTotal.WithLabelValues(c.Path(), strconv.Itoa(code)).Inc()
		utils.Log.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"route":  c.Path(),
			"code":   code,
			"took":   time.Since(start).String(),
		}).Debug("http request")
		return nil
	}
}

// Echo builds the router. gatherer backs /metrics; nil leaves it out.
func (s *Server) Echo(gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	e.Use(echomiddleware.Recover())
	e.Use(logRequests)

	e.GET("/healthz", s.handleHealth)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1")
	api.POST("/recommend", s.handleRecommend)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	return e
}
