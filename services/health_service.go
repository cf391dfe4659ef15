package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/types"
)

// HealthService reports the status of the service's upstream dependencies:
// the Supabase REST endpoint that backs all reads and writes, and the Redis
// instance used for rate limiting.
type HealthService struct {
	supabaseURL string
	supabaseKey string
	redisClient *redis.Client
	httpClient  *http.Client
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

func NewHealthService(supabaseURL, supabaseAnonKey string, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		supabaseURL: supabaseURL,
		supabaseKey: supabaseAnonKey,
		redisClient: redisClient,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	supabaseStatus := h.checkSupabase(ctx)
	components["supabase"] = supabaseStatus
	if supabaseStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	redisStatus := h.checkRedis(ctx)
	components["redis"] = redisStatus
	// Rate limiting fails open, so a Redis outage degrades rather than
	// takes the service down.
	if redisStatus.Status == types.HealthStatusDown && overallStatus != types.HealthStatusDown {
		overallStatus = types.HealthStatusDegraded
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkSupabase(ctx context.Context) types.HealthComponent {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.supabaseURL+"/rest/v1/", nil)
	if err != nil {
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Failed to build health probe request",
		}
	}
	req.Header.Set("apikey", h.supabaseKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.Errorw("Supabase health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Supabase REST endpoint unreachable",
		}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			h.log.Warnw("Failed to close health probe response body", "error", cerr)
		}
	}()

	if resp.StatusCode >= 500 {
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: fmt.Sprintf("Supabase REST endpoint returned %d", resp.StatusCode),
		}
	}

	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
