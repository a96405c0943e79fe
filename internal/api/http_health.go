package api

import (
	"context"
	"net/http"
	"portfolio/internal/entity/dto"
	"portfolio/internal/storage"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

// Health 并发执行数据库和存储检查，任一失败返回 503
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	deps := []dependencyCheck{
		{name: "database", check: h.checkDatabase},
		{name: "storage", check: h.checkStorage},
	}

	checks := make([]dto.HealthCheck, len(deps))
	g, gCtx := errgroup.WithContext(ctx)
	for i, dep := range deps {
		g.Go(func() error {
			check := dto.HealthCheck{Name: dep.name, Status: dto.HealthStatusHealthy}
			if err := dep.check(gCtx); err != nil {
				logrus.WithError(err).WithField("check", dep.name).Warn("health check failed")
				check.Status = dto.HealthStatusUnhealthy
				check.Description = err.Error()
			}
			checks[i] = check
			// 失败记录在结果里，不中断其他检查
			return nil
		})
	}
	_ = g.Wait()

	report := dto.HealthReport{Status: dto.HealthStatusHealthy, Checks: checks}
	status := http.StatusOK
	for _, check := range checks {
		if check.Status != dto.HealthStatusHealthy {
			report.Status = dto.HealthStatusUnhealthy
			status = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(status, report)
}

func (h *HTTPHandler) checkDatabase(ctx context.Context) error {
	if h.repo == nil {
		return errNotConfigured("database")
	}
	return h.repo.Ping(ctx)
}

func (h *HTTPHandler) checkStorage(ctx context.Context) error {
	if h.storage == nil {
		return errNotConfigured("storage")
	}
	checker, ok := h.storage.(storage.Checker)
	if !ok {
		return nil
	}
	return checker.Check(ctx)
}

type errNotConfigured string

func (e errNotConfigured) Error() string {
	return string(e) + " not configured"
}
