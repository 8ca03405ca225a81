package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ExportCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const frameworkExportPrefix = "framework:export:"

func FrameworkExportCacheKey(roleID uuid.UUID, format string) string {
	return frameworkExportPrefix + roleID.String() + ":" + strings.ToLower(strings.TrimSpace(format))
}

// FrameworkExportCachePattern matches every cached export of one role, or of
// all roles when roleID is uuid.Nil.
func FrameworkExportCachePattern(roleID uuid.UUID) string {
	if roleID == uuid.Nil {
		return frameworkExportPrefix + "*"
	}
	return frameworkExportPrefix + roleID.String() + ":*"
}
