package monitor

import (
	"context"
	"net/http"
	"os"
	"sort"
	"sync"
	"thesis-verification-api/config"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

// DependencyStatus is one row of the /monitor response.
type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Checker runs the registered probes concurrently.
type Checker struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Checker{probes: map[string]Probe{}, timeout: timeout}
}

// Add registers a probe. A nil probe reports the dependency as disabled.
func (ch *Checker) Add(name string, p Probe) {
	ch.probes[name] = p
}

// Run executes every probe and returns the results sorted by name, plus
// whether every enabled dependency answered.
func (ch *Checker) Run(ctx context.Context) ([]DependencyStatus, bool) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make([]DependencyStatus, 0, len(ch.probes))
		ok  = true
	)
	for name, probe := range ch.probes {
		if probe == nil {
			mu.Lock()
			out = append(out, DependencyStatus{Name: name, Status: "disabled"})
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(name string, probe Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, ch.timeout)
			defer cancel()
			start := time.Now()
			err := probe(pctx)
			st := DependencyStatus{Name: name, Status: "up", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status = "down"
				st.Error = err.Error()
			}
			mu.Lock()
			out = append(out, st)
			if err != nil {
				ok = false
			}
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, ok
}

// RegisterMonitorRoutes mounts GET /monitor.
func RegisterMonitorRoutes(router *gin.Engine, ch *Checker) {
	router.GET("/monitor", func(c *gin.Context) {
		deps, ok := ch.Run(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":      ok,
			"dependencies": deps,
			"checked_at":   time.Now(),
		})
	})
}

// RegisterLogsRoute serves the current log file to holders of MONITOR_TOKEN.
// Without a token configured the route is not mounted.
func RegisterLogsRoute(router *gin.Engine, logDir string) {
	token := os.Getenv("MONITOR_TOKEN")
	if token == "" {
		return
	}
	router.GET("/logs", func(c *gin.Context) {
		if c.Query("token") != token {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		logData, err := os.ReadFile(config.LogFilePath(logDir))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}
