package transporthttp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/likewatch-dev/likewatch/internal/config"
	"github.com/likewatch-dev/likewatch/internal/domain"
	"github.com/likewatch-dev/likewatch/internal/forensics"
)

// Pinger reports event-store reachability for /readyz.
type Pinger interface {
	Ready(ctx context.Context) error
}

// ServerDeps wires the forensics engine into the HTTP surface. The engine
// returns structured results only; this layer owns presentation concerns
// like the attack verdict.
type ServerDeps struct {
	Cfg    config.Config
	Engine *forensics.Engine
	Store  Pinger
	Log    zerolog.Logger
	Now    func() time.Time
}

const (
	verdictAttack  = "Attack Detected"
	verdictOrganic = "Organic Activity"
)

func (d *ServerDeps) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (d *ServerDeps) handleReadyz(c *gin.Context) {
	if err := d.Store.Ready(c.Request.Context()); err != nil {
		writeProblem(c, http.StatusServiceUnavailable, "not ready", "event store not reachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// handleSubjects lists everything with events, busiest first, so an operator
// can pick a subject to drill into.
func (d *ServerDeps) handleSubjects(c *gin.Context) {
	subjects, err := d.Engine.ListSubjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if subjects == nil {
		subjects = []forensics.SubjectStat{}
	}
	c.JSON(http.StatusOK, subjects)
}

func (d *ServerDeps) handleActor(c *gin.Context) {
	profile, err := d.Engine.Profile(c.Request.Context(), c.Param("id"), d.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (d *ServerDeps) handleSummary(c *gin.Context) {
	sum, err := d.Engine.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (d *ServerDeps) handleSpike(c *gin.Context) {
	hour, err := domain.ParseHour(c.Query("hour"))
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := d.Engine.CheckSpike(c.Request.Context(), c.Param("id"), hour)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type riskResponse struct {
	forensics.RiskReport
	IsSpike bool   `json:"is_spike"`
	Verdict string `json:"verdict"`
}

// handleRisk scores the one-hour window and applies the reporting policy:
// attack iff the window spikes and its fresh fraction exceeds the alert
// threshold.
func (d *ServerDeps) handleRisk(c *gin.Context) {
	subjectID := c.Param("id")
	hour, err := domain.ParseHour(c.Query("hour"))
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	spike, err := d.Engine.CheckSpike(ctx, subjectID, hour)
	if err != nil {
		writeError(c, err)
		return
	}
	report, err := d.Engine.ScoreWindow(ctx, subjectID, hour, hour.Add(time.Hour))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := riskResponse{RiskReport: report, IsSpike: spike.IsSpike, Verdict: verdictOrganic}
	if spike.IsSpike && report.Summary.FreshFraction > d.Cfg.FreshFractionAlert {
		resp.Verdict = verdictAttack
	}
	if len(report.Warnings) > 0 {
		d.Log.Warn().
			Str("subject", subjectID).
			Int("warnings", len(report.Warnings)).
			Msg("data-integrity violations excluded from scoring")
	}
	c.JSON(http.StatusOK, resp)
}

type seriesResponse struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// handleSeries feeds the dashboard chart: hourly labels and counts.
func (d *ServerDeps) handleSeries(c *gin.Context) {
	series, err := d.Engine.Series(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := seriesResponse{Labels: make([]string, 0, len(series)), Data: make([]int64, 0, len(series))}
	for _, b := range series {
		resp.Labels = append(resp.Labels, domain.FormatHour(b.HourStart))
		resp.Data = append(resp.Data, b.Count)
	}
	c.JSON(http.StatusOK, resp)
}

const (
	defaultScanLimit = 5
	maxScanLimit     = 100
)

func (d *ServerDeps) handleAnomalies(c *gin.Context) {
	limit := defaultScanLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxScanLimit {
			writeProblem(c, http.StatusBadRequest, "invalid parameters",
				"limit must be an integer in [1,"+strconv.Itoa(maxScanLimit)+"]")
			return
		}
		limit = n
	}

	var from *time.Time
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeProblem(c, http.StatusBadRequest, "invalid parameters", "days must be a positive integer")
			return
		}
		t := d.Now().Add(-time.Duration(n) * 24 * time.Hour)
		from = &t
	}

	buckets, err := d.Engine.ScanAnomalies(c.Request.Context(), limit, from, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	if buckets == nil {
		buckets = []forensics.AnomalyBucket{}
	}
	c.JSON(http.StatusOK, buckets)
}

// Router assembles the gin engine. No free-form query endpoint exists on
// purpose: the store is reachable only through the allow-listed operations
// above.
func (d *ServerDeps) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Log), BodyLimit(d.Cfg.MaxBodyBytes))

	r.GET("/healthz", d.handleHealthz)
	r.GET("/readyz", d.handleReadyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", APIKeyAuth(d.Cfg.APIKeySet()))
	api.GET("/subjects", d.handleSubjects)
	api.GET("/actors/:id", d.handleActor)
	api.GET("/subjects/:id/summary", d.handleSummary)
	api.GET("/subjects/:id/spike", d.handleSpike)
	api.GET("/subjects/:id/risk", d.handleRisk)
	api.GET("/subjects/:id/series", d.handleSeries)
	api.GET("/anomalies", RateLimitPerMinute(d.Cfg.ScanRatePerMin, d.Now), d.handleAnomalies)

	return r
}
