package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"print-pricing/internal/artifact"
	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/logger"
	"print-pricing/internal/models"
	"print-pricing/internal/services/crawler"
	"print-pricing/internal/services/registrar"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Crawler runs one product crawl.
type Crawler interface {
	Crawl(ctx context.Context, target string) (*crawler.Report, error)
}

// Registrar registers one artifact.
type Registrar interface {
	RegisterArtifact(ctx context.Context, store artifact.Store, loc artifact.Location) (*registrar.Result, error)
}

// Deps are the services behind the trigger endpoints. DB is optional; without
// it run history is kept in memory only.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *gorm.DB
	Crawler   Crawler
	Registrar Registrar
	Store     artifact.Store
	Hub       *Hub
}

type APIHandler struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *gorm.DB
	crawler   Crawler
	registrar Registrar
	store     artifact.Store
	hub       *Hub

	// one crawl per target and one registration per table at a time
	busyMu sync.Mutex
	busy   map[string]bool

	runs *runHistory
}

func SetupRoutes(r *gin.RouterGroup, deps Deps) *APIHandler {
	handler := &APIHandler{
		cfg:       deps.Config,
		log:       deps.Logger.With("component", "api"),
		db:        deps.DB,
		crawler:   deps.Crawler,
		registrar: deps.Registrar,
		store:     deps.Store,
		hub:       deps.Hub,
		busy:      make(map[string]bool),
		runs:      newRunHistory(historySize),
	}

	r.POST("/crawl", handler.TriggerCrawl)
	r.POST("/register", handler.TriggerRegister)

	runs := r.Group("/runs")
	{
		runs.GET("", handler.ListRuns)
		runs.GET("/:run_id", handler.GetRun)
	}

	r.GET("/products", handler.ListProducts)
	r.GET("/artifacts", handler.ListArtifacts)

	return handler
}

func (h *APIHandler) acquire(key string) bool {
	h.busyMu.Lock()
	defer h.busyMu.Unlock()
	if h.busy[key] {
		return false
	}
	h.busy[key] = true
	return true
}

func (h *APIHandler) release(key string) {
	h.busyMu.Lock()
	delete(h.busy, key)
	h.busyMu.Unlock()
}

func (h *APIHandler) publish(ev RunEvent) {
	if h.hub != nil {
		h.hub.Publish(ev)
	}
}

func (h *APIHandler) startRun(kind, target string) *models.RunLog {
	run := &models.RunLog{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Status:    statusRunning,
		StartedAt: time.Now(),
	}
	h.saveRun(run)
	h.publish(RunEvent{RunID: run.RunID, Kind: kind, Target: target, Status: statusRunning})
	return run
}

func (h *APIHandler) finishRun(run *models.RunLog, err error) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = statusSucceeded
	if err != nil {
		run.Status = statusFailed
		run.Message = err.Error()
	}
	h.saveRun(run)
	h.publish(RunEvent{RunID: run.RunID, Kind: run.Kind, Target: run.Target, Status: run.Status, Message: run.Message})
}

// TriggerCrawl runs the crawl named by {"TARGET": selector} and answers with
// the outcome once it finishes.
func (h *APIHandler) TriggerCrawl(c *gin.Context) {
	var req struct {
		Target string `json:"TARGET"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "TARGET is required"})
		return
	}
	if _, ok := catalog.ProductByTarget(req.Target); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown TARGET " + req.Target})
		return
	}

	key := "crawl:" + req.Target
	if !h.acquire(key) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "crawl already running", "target": req.Target})
		return
	}
	defer h.release(key)

	run := h.startRun(KindCrawl, req.Target)
	report, err := h.crawler.Crawl(c.Request.Context(), req.Target)
	if report != nil {
		run.ArtifactKey = report.Artifact.Key
		run.Records = report.Records
		run.SuccessRatio = report.SuccessRatio
	}
	h.finishRun(run, err)

	if err != nil {
		h.log.Error("Crawl failed", "target", req.Target, "run_id", run.RunID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, crawler.ErrUnknownTarget) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "run_id": run.RunID, "error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "run_id": run.RunID, "report": report})
}

// TriggerRegister accepts a storage notification for a new artifact.
func (h *APIHandler) TriggerRegister(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	loc, err := registrar.ParseEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if loc.Bucket == "" {
		loc.Bucket = h.cfg.ArtifactBucket
	}
	prefix, err := artifact.ProductPrefix(loc.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	product, ok := catalog.ProductByPrefix(prefix)
	if !ok {
		// not one of ours; acknowledge so the notifier does not retry
		h.log.Info("Ignoring artifact with unknown prefix", "artifact", loc.String())
		c.JSON(http.StatusOK, gin.H{"success": false, "ignored": true, "error": "unknown artifact prefix " + prefix})
		return
	}

	key := "register:" + product.Table
	if !h.acquire(key) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "registration already running", "table": product.Table})
		return
	}
	defer h.release(key)

	run := h.startRun(KindRegister, product.Table)
	run.ArtifactKey = loc.Key
	res, err := h.registrar.RegisterArtifact(c.Request.Context(), h.store, loc)
	if res != nil {
		run.Records = res.Loaded
		run.Changed = res.Changed
	}
	h.finishRun(run, err)

	if err != nil {
		h.log.Error("Registration failed", "artifact", loc.String(), "run_id", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "run_id": run.RunID, "error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "run_id": run.RunID, "result": res})
}

func (h *APIHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > historySize {
		limit = historySize
	}
	runs, err := h.recentRuns(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (h *APIHandler) GetRun(c *gin.Context) {
	run, err := h.findRun(c.Request.Context(), c.Param("run_id"))
	if errors.Is(err, errRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *APIHandler) ListProducts(c *gin.Context) {
	type product struct {
		Name           string `json:"name"`
		DisplayName    string `json:"display_name"`
		Target         string `json:"target"`
		ArtifactPrefix string `json:"artifact_prefix"`
		Table          string `json:"table"`
	}
	var out []product
	for _, p := range catalog.Products() {
		out = append(out, product{p.Category.String(), p.Category.DisplayName(), p.CrawlTarget, p.ArtifactPrefix, p.Table})
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// ListArtifacts lists stored artifacts, optionally for one product prefix,
// and names the newest one.
func (h *APIHandler) ListArtifacts(c *gin.Context) {
	prefix := c.Query("product")
	listPrefix := artifact.Key(h.cfg.ArtifactSubdir, "")
	if prefix != "" {
		if _, ok := catalog.ProductByPrefix(prefix); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown product " + prefix})
			return
		}
		listPrefix = artifact.Key(h.cfg.ArtifactSubdir, prefix+"_")
	}
	keys, err := h.store.List(c.Request.Context(), h.cfg.ArtifactBucket, listPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"bucket": h.cfg.ArtifactBucket, "artifacts": keys, "count": len(keys)}
	if prefix != "" {
		if latest, err := artifact.Latest(c.Request.Context(), h.store, h.cfg.ArtifactBucket, h.cfg.ArtifactSubdir, prefix); err == nil {
			resp["latest"] = latest
		}
	}
	c.JSON(http.StatusOK, resp)
}
