package middleware

import (
	"strings"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/logger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// TenantIDKey is the gin context key holding the canonical shared.TenantID
	TenantIDKey = "tenant_id"
	// TenantHeaderKey is the header carrying the raw tenant key
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// Policy validates and canonicalizes the raw key
	Policy shared.TenantKeyPolicy
	// SkipPaths are paths that don't require tenant context
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		Policy:    shared.DefaultTenantKeyPolicy(),
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// TenantMiddlewareWithConfig requires X-Tenant-ID on every request outside
// SkipPaths. The key is canonicalized (E.164 for phone keys) and stored in
// the gin context, the request logger and the current span.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeaderKey)
		if len(raw) > MaxTenantIDLength {
			respondTenantError(c, "Tenant key is too long")
			return
		}
		tenantID, err := shared.ParseTenantID(raw, cfg.Policy)
		if err != nil {
			log.Debug("rejected tenant key",
				zap.String("path", path),
				zap.Error(err),
			)
			respondTenantError(c, err.Error())
			return
		}

		c.Set(TenantIDKey, tenantID)

		base := logger.GetGinLogger(c)
		ctx, reqLogger := logger.WithTenantID(c.Request.Context(), base, tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		logger.SetGinLogger(c, reqLogger)

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())
		}

		c.Next()
	}
}

// GetTenantID returns the tenant resolved by the tenant middleware
func GetTenantID(c *gin.Context) (shared.TenantID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return "", false
	}
	tenantID, ok := v.(shared.TenantID)
	if !ok || tenantID.IsZero() {
		return "", false
	}
	return tenantID, true
}

func respondTenantError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeTenantRequired),
		dto.NewErrorResponseWithRequestID(dto.ErrCodeTenantRequired, message, GetRequestID(c)))
}
