package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-ladder/internal/codec"
	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/pkg/logging"
	"skill-ladder/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ExportResult struct {
	RoleID      uuid.UUID `json:"role_id"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Body        string    `json:"body"`
}

type ImportResult struct {
	RoleID          uuid.UUID `json:"role_id"`
	Format          string    `json:"format"`
	Competencies    int       `json:"competencies"`
	SubCompetencies int       `json:"sub_competencies"`
}

type CriteriaItem struct {
	CompetencyTitle    string    `json:"competency_title"`
	SubCompetencyID    uuid.UUID `json:"sub_competency_id"`
	SubCompetencyTitle string    `json:"sub_competency_title"`
	Criteria           []string  `json:"criteria"`
}

type FrameworkUsecase interface {
	Export(ctx context.Context, roleID uuid.UUID, format string) (ExportResult, error)
	Import(ctx context.Context, roleID uuid.UUID, body []byte) (ImportResult, error)
	Criteria(ctx context.Context, roleID uuid.UUID, levelKey string) ([]CriteriaItem, error)
}

type Framework struct {
	repo     repository.FrameworkRepository
	levels   LevelUsecase
	cache    ExportCache
	cacheTTL time.Duration
	logger   logrus.FieldLogger
}

func NewFrameworkUsecase(repo repository.FrameworkRepository, levels LevelUsecase, cache ExportCache, cacheTTL time.Duration, logger logrus.FieldLogger) *Framework {
	return &Framework{
		repo:     repo,
		levels:   levels,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logging.OrDefault(logger),
	}
}

func contentTypeFor(f codec.Format) string {
	if f == codec.FormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

func (u *Framework) Export(ctx context.Context, roleID uuid.UUID, format string) (ExportResult, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := FrameworkExportCacheKey(roleID, string(f))
	if u.cache != nil {
		var cached ExportResult
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.logger.WithError(err).WithField("key", key).Warn("[FrameworkExport] cache read failed")
		}
		if hit {
			frameworkExportCache.WithLabelValues(string(f), "hit").Inc()
			return cached, nil
		}
		frameworkExportCache.WithLabelValues(string(f), "miss").Inc()
	}

	rl, err := u.levels.LevelsForRole(ctx, roleID)
	if err != nil {
		return ExportResult{}, err
	}
	competencies, err := u.loadFramework(ctx, roleID)
	if err != nil {
		return ExportResult{}, err
	}

	body, err := codec.Export(competencies, rl.Levels, f)
	if err != nil {
		u.logger.WithError(err).WithField("role_id", roleID).Error("[FrameworkExport] render failed")
		return ExportResult{}, ErrInternal
	}

	out := ExportResult{RoleID: roleID, Format: string(f), ContentType: contentTypeFor(f), Body: string(body)}
	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, out, u.cacheTTL); err != nil {
			u.logger.WithError(err).WithField("key", key).Warn("[FrameworkExport] cache write failed")
		}
	}
	return out, nil
}

func (u *Framework) Import(ctx context.Context, roleID uuid.UUID, body []byte) (ImportResult, error) {
	if strings.TrimSpace(string(body)) == "" {
		return ImportResult{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}

	rl, err := u.levels.LevelsForRole(ctx, roleID)
	if err != nil {
		return ImportResult{}, err
	}

	doc, format, err := codec.Parse(string(body), rl.Levels)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := u.repo.ReplaceFramework(ctx, roleID, doc.ToCompetencies()); err != nil {
		u.logger.WithError(err).WithField("role_id", roleID).Error("[FrameworkImport] replace failed")
		return ImportResult{}, ErrInternal
	}
	u.invalidate(ctx, roleID)

	res := ImportResult{
		RoleID:          roleID,
		Format:          string(format),
		Competencies:    len(doc.Competencies),
		SubCompetencies: doc.SubCompetencyCount(),
	}
	u.logger.WithFields(logrus.Fields{
		"role_id":          roleID,
		"format":           res.Format,
		"competencies":     res.Competencies,
		"sub_competencies": res.SubCompetencies,
	}).Info("[FrameworkImport] imported")
	return res, nil
}

func (u *Framework) Criteria(ctx context.Context, roleID uuid.UUID, levelKey string) ([]CriteriaItem, error) {
	levelKey = strings.TrimSpace(levelKey)
	if levelKey == "" {
		return nil, fmt.Errorf("%w: level is required", ErrInvalidInput)
	}
	if _, err := u.levels.LevelsForRole(ctx, roleID); err != nil {
		return nil, err
	}

	competencies, err := u.loadFramework(ctx, roleID)
	if err != nil {
		return nil, err
	}

	out := make([]CriteriaItem, 0)
	for _, c := range framework.SortedCompetencies(competencies) {
		for _, s := range framework.SortedSubCompetencies(c.SubCompetencies) {
			out = append(out, CriteriaItem{
				CompetencyTitle:    c.Title,
				SubCompetencyID:    s.ID,
				SubCompetencyTitle: s.Title,
				Criteria:           framework.Resolve(s, levelKey),
			})
		}
	}
	return out, nil
}

func (u *Framework) loadFramework(ctx context.Context, roleID uuid.UUID) ([]framework.Competency, error) {
	rows, err := u.repo.ListCompetenciesByRole(ctx, roleID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]framework.Competency, 0, len(rows))
	for _, r := range rows {
		subRows, err := u.repo.ListSubCompetenciesByCompetency(ctx, r.ID)
		if err != nil {
			return nil, ErrInternal
		}
		c := framework.Competency{
			ID:              r.ID,
			RoleID:          r.RoleID,
			Title:           r.Title,
			Code:            r.Code,
			Description:     r.Description,
			OrderIndex:      r.OrderIndex,
			SubCompetencies: make([]framework.SubCompetency, 0, len(subRows)),
		}
		for _, sr := range subRows {
			s, err := sr.ToDomain()
			if err != nil {
				// Unreadable map: serve the legacy columns only.
				u.logger.WithError(err).WithField("sub_competency_id", sr.ID).Warn("[Framework] unreadable level_criteria")
				s = framework.SubCompetency{
					ID:           sr.ID,
					CompetencyID: sr.CompetencyID,
					Title:        sr.Title,
					Code:         sr.Code,
					OrderIndex:   sr.OrderIndex,
					Legacy:       sr.Legacy,
				}
			}
			c.SubCompetencies = append(c.SubCompetencies, s)
		}
		out = append(out, c)
	}
	return out, nil
}

func (u *Framework) invalidate(ctx context.Context, roleID uuid.UUID) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, FrameworkExportCachePattern(roleID)); err != nil && !errors.Is(err, context.Canceled) {
		u.logger.WithError(err).WithField("role_id", roleID).Warn("[FrameworkExport] cache invalidation failed")
	}
}
