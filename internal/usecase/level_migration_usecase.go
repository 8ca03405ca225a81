package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"
	"skill-ladder/internal/pkg/logging"
	"skill-ladder/internal/pkg/workerpool"
	"skill-ladder/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	OperationSeedLevels = "seed-levels"
	OperationBackfill   = "backfill"
	OperationTranslate  = "translate"
	OperationVerify     = "verify"
	OperationRunAll     = "run-all"
)

type BatchResult struct {
	Operation string `json:"operation"`
	Checked   int    `json:"checked"`
	Changed   int    `json:"changed"`
	Skipped   int    `json:"skipped"`
}

type VerifyReport struct {
	Passed                 bool     `json:"passed"`
	Issues                 []string `json:"issues"`
	RolesChecked           int      `json:"roles_checked"`
	SubCompetenciesChecked int      `json:"sub_competencies_checked"`
}

type RunAllReport struct {
	Batches []BatchResult `json:"batches"`
	Verify  VerifyReport  `json:"verify"`
}

var ErrMigrationInProgress = errors.New("level migration already running")

const levelMigrationLockKey = "migration:levels:lock"

// BatchLock keeps two hosts from migrating the same records at once.
type BatchLock interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type LevelMigrationOptions struct {
	Workers       int
	RatePerSecond int
	Lock          BatchLock
	LockTTL       time.Duration
}

// MigrationNotifier is told about batches that changed stored data.
type MigrationNotifier interface {
	NotifyLevelsMigrated(result BatchResult)
}

type LevelMigrationUsecase interface {
	SeedRoleLevels(ctx context.Context) (BatchResult, error)
	BackfillLevelCriteria(ctx context.Context) (BatchResult, error)
	TranslateLegacyKeys(ctx context.Context) (BatchResult, error)
	Verify(ctx context.Context) (VerifyReport, error)
	RunAll(ctx context.Context) (RunAllReport, error)
	Run(ctx context.Context, operation string) (BatchResult, error)
}

// LevelMigration moves stored frameworks from the fixed five-level scheme to
// per-role level registries. Every operation is idempotent and handles one
// record per task; a record that cannot be read or written is skipped.
type LevelMigration struct {
	frameworks repository.FrameworkRepository
	levels     repository.LevelRepository
	cache      ExportCache
	notifier   MigrationNotifier
	pool       workerpool.Options
	lock       BatchLock
	lockTTL    time.Duration
	logger     logrus.FieldLogger
}

func NewLevelMigrationUsecase(
	frameworks repository.FrameworkRepository,
	levels repository.LevelRepository,
	cache ExportCache,
	notifier MigrationNotifier,
	opts LevelMigrationOptions,
	logger logrus.FieldLogger,
) *LevelMigration {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Minute
	}
	return &LevelMigration{
		frameworks: frameworks,
		levels:     levels,
		cache:      cache,
		notifier:   notifier,
		pool:       workerpool.Options{Workers: opts.Workers, RatePerSecond: opts.RatePerSecond},
		lock:       opts.Lock,
		lockTTL:    opts.LockTTL,
		logger:     logging.OrDefault(logger),
	}
}

func (m *LevelMigration) acquire(ctx context.Context) (func(), error) {
	if m.lock == nil {
		return func() {}, nil
	}
	ok, err := m.lock.SetIfNotExists(ctx, levelMigrationLockKey, time.Now().UTC().Format(time.RFC3339), m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	if !ok {
		return nil, ErrMigrationInProgress
	}
	return func() {
		if err := m.lock.Delete(context.Background(), levelMigrationLockKey); err != nil {
			m.logger.WithError(err).Warn("[LevelMigration] release lock failed")
		}
	}, nil
}

// Run dispatches a single batch operation by name while holding the
// migration lock.
func (m *LevelMigration) Run(ctx context.Context, operation string) (BatchResult, error) {
	op := strings.ToLower(strings.TrimSpace(operation))
	switch op {
	case OperationSeedLevels, OperationBackfill, OperationTranslate:
	default:
		return BatchResult{}, fmt.Errorf("%w: unknown migration operation %q", ErrInvalidInput, operation)
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return BatchResult{Operation: op}, err
	}
	defer release()

	switch op {
	case OperationSeedLevels:
		return m.SeedRoleLevels(ctx)
	case OperationBackfill:
		return m.BackfillLevelCriteria(ctx)
	default:
		return m.TranslateLegacyKeys(ctx)
	}
}

func (m *LevelMigration) SeedRoleLevels(ctx context.Context) (BatchResult, error) {
	roles, err := m.frameworks.ListRoles(ctx)
	if err != nil {
		return BatchResult{Operation: OperationSeedLevels}, fmt.Errorf("list roles: %w", err)
	}

	tasks := make([]workerpool.Task[bool], 0, len(roles))
	for _, r := range roles {
		role := r
		tasks = append(tasks, func(ctx context.Context) (bool, error) {
			return m.seedRole(ctx, role)
		})
	}
	return m.runBatch(ctx, OperationSeedLevels, tasks)
}

func (m *LevelMigration) seedRole(ctx context.Context, role repository.RoleRow) (bool, error) {
	rt, err := level.ParseRoleType(role.Type)
	if err != nil {
		return false, fmt.Errorf("role %q (%s): %w", role.Name, role.ID, err)
	}

	n, err := m.levels.CountByRole(ctx, role.ID)
	if err != nil {
		return false, fmt.Errorf("role %q (%s): count levels: %w", role.Name, role.ID, err)
	}
	if n > 0 {
		return false, nil
	}

	defaults, err := level.DefaultLevels(rt)
	if err != nil {
		return false, err
	}
	inserted, err := m.levels.InsertLevels(ctx, role.ID, defaults)
	if err != nil {
		return false, fmt.Errorf("role %q (%s): insert levels: %w", role.Name, role.ID, err)
	}
	return inserted > 0, nil
}

func (m *LevelMigration) BackfillLevelCriteria(ctx context.Context) (BatchResult, error) {
	return m.eachSubCompetency(ctx, OperationBackfill, m.backfillOne)
}

// backfillOne never merges into an existing map, even an incomplete one.
func (m *LevelMigration) backfillOne(ctx context.Context, id uuid.UUID) (bool, error) {
	row, err := m.frameworks.GetSubCompetency(ctx, id)
	if err != nil {
		return false, err
	}
	current, err := framework.DecodeLevelCriteria(row.LevelCriteria)
	if err != nil {
		return false, fmt.Errorf("sub-competency %q (%s): %w", row.Title, row.ID, err)
	}
	if current != nil {
		return false, nil
	}

	raw, err := framework.EncodeLevelCriteria(row.Legacy.ToMap())
	if err != nil {
		return false, err
	}
	if err := m.frameworks.UpdateLevelCriteria(ctx, row.ID, raw); err != nil {
		return false, fmt.Errorf("sub-competency %q (%s): %w", row.Title, row.ID, err)
	}
	return true, nil
}

func (m *LevelMigration) TranslateLegacyKeys(ctx context.Context) (BatchResult, error) {
	return m.eachSubCompetency(ctx, OperationTranslate, m.translateOne)
}

func (m *LevelMigration) translateOne(ctx context.Context, id uuid.UUID) (bool, error) {
	row, err := m.frameworks.GetSubCompetency(ctx, id)
	if err != nil {
		return false, err
	}
	current, err := framework.DecodeLevelCriteria(row.LevelCriteria)
	if err != nil {
		return false, fmt.Errorf("sub-competency %q (%s): %w", row.Title, row.ID, err)
	}
	if !current.HasLegacyKeys() {
		return false, nil
	}

	raw, err := framework.EncodeLevelCriteria(current.Translated())
	if err != nil {
		return false, err
	}
	if err := m.frameworks.UpdateLevelCriteria(ctx, row.ID, raw); err != nil {
		return false, fmt.Errorf("sub-competency %q (%s): %w", row.Title, row.ID, err)
	}
	return true, nil
}

func (m *LevelMigration) eachSubCompetency(ctx context.Context, op string, fn func(context.Context, uuid.UUID) (bool, error)) (BatchResult, error) {
	subs, err := m.frameworks.ListSubCompetencies(ctx)
	if err != nil {
		return BatchResult{Operation: op}, fmt.Errorf("list sub-competencies: %w", err)
	}

	tasks := make([]workerpool.Task[bool], 0, len(subs))
	for _, s := range subs {
		id := s.ID
		tasks = append(tasks, func(ctx context.Context) (bool, error) {
			return fn(ctx, id)
		})
	}
	return m.runBatch(ctx, op, tasks)
}

func (m *LevelMigration) runBatch(ctx context.Context, op string, tasks []workerpool.Task[bool]) (BatchResult, error) {
	res := BatchResult{Operation: op}
	for _, r := range workerpool.Process(ctx, m.pool, tasks) {
		res.Checked++
		switch {
		case r.Err != nil:
			res.Skipped++
			migrationRecords.WithLabelValues(op, outcomeSkipped).Inc()
			m.logger.WithError(r.Err).WithField("operation", op).Warn("[LevelMigration] record skipped")
		case r.Value:
			res.Changed++
			migrationRecords.WithLabelValues(op, outcomeChanged).Inc()
		default:
			migrationRecords.WithLabelValues(op, outcomeUnchanged).Inc()
		}
	}

	m.logger.WithFields(logrus.Fields{
		"operation": op,
		"checked":   res.Checked,
		"changed":   res.Changed,
		"skipped":   res.Skipped,
	}).Info("[LevelMigration] batch finished")

	if res.Changed > 0 {
		m.afterChange(ctx, res)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (m *LevelMigration) afterChange(ctx context.Context, res BatchResult) {
	if m.cache != nil {
		if err := m.cache.DeleteByPattern(ctx, FrameworkExportCachePattern(uuid.Nil)); err != nil {
			m.logger.WithError(err).Warn("[LevelMigration] cache invalidation failed")
		}
	}
	if m.notifier != nil {
		m.notifier.NotifyLevelsMigrated(res)
	}
}

// Verify is read-only. Every role needs stored levels and every
// sub-competency needs a readable unified map free of legacy keys.
func (m *LevelMigration) Verify(ctx context.Context) (VerifyReport, error) {
	roles, err := m.frameworks.ListRoles(ctx)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("list roles: %w", err)
	}
	subs, err := m.frameworks.ListSubCompetencies(ctx)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("list sub-competencies: %w", err)
	}

	tasks := make([]workerpool.Task[[]string], 0, len(roles))
	for _, r := range roles {
		role := r
		tasks = append(tasks, func(ctx context.Context) ([]string, error) {
			return m.verifyRole(ctx, role), nil
		})
	}

	issues := make([]string, 0)
	for _, r := range workerpool.Process(ctx, m.pool, tasks) {
		issues = append(issues, r.Value...)
	}
	if err := ctx.Err(); err != nil {
		return VerifyReport{}, err
	}
	for _, s := range subs {
		issues = append(issues, verifySubCompetency(s)...)
	}
	sort.Strings(issues)

	report := VerifyReport{
		Passed:                 len(issues) == 0,
		Issues:                 issues,
		RolesChecked:           len(roles),
		SubCompetenciesChecked: len(subs),
	}
	migrationVerifyIssues.Set(float64(len(issues)))

	entry := m.logger.WithFields(logrus.Fields{
		"roles":            report.RolesChecked,
		"sub_competencies": report.SubCompetenciesChecked,
		"issues":           len(report.Issues),
	})
	if report.Passed {
		entry.Info("[LevelMigration] verify passed")
	} else {
		entry.Warn("[LevelMigration] verify found issues")
	}
	return report, nil
}

func (m *LevelMigration) verifyRole(ctx context.Context, role repository.RoleRow) []string {
	out := make([]string, 0, 1)
	if _, err := level.ParseRoleType(role.Type); err != nil {
		out = append(out, fmt.Sprintf("role %q (%s) has unknown type %q", role.Name, role.ID, role.Type))
	}
	n, err := m.levels.CountByRole(ctx, role.ID)
	switch {
	case err != nil:
		out = append(out, fmt.Sprintf("role %q (%s) levels could not be read: %v", role.Name, role.ID, err))
	case n == 0:
		out = append(out, fmt.Sprintf("role %q (%s) has no levels", role.Name, role.ID))
	}
	return out
}

func verifySubCompetency(s repository.SubCompetencyRow) []string {
	current, err := framework.DecodeLevelCriteria(s.LevelCriteria)
	switch {
	case err != nil:
		return []string{fmt.Sprintf("sub-competency %q (%s) has unreadable level_criteria: %v", s.Title, s.ID, err)}
	case current == nil:
		return []string{fmt.Sprintf("sub-competency %q (%s) has no level_criteria", s.Title, s.ID)}
	case current.HasLegacyKeys():
		return []string{fmt.Sprintf("sub-competency %q (%s) still uses legacy level keys", s.Title, s.ID)}
	}
	return nil
}

// RunAll applies seed, backfill and translate in order, then verifies.
// It stops at the first batch that fails outright.
func (m *LevelMigration) RunAll(ctx context.Context) (RunAllReport, error) {
	var report RunAllReport
	release, err := m.acquire(ctx)
	if err != nil {
		return report, err
	}
	defer release()

	steps := []func(context.Context) (BatchResult, error){
		m.SeedRoleLevels,
		m.BackfillLevelCriteria,
		m.TranslateLegacyKeys,
	}
	for _, step := range steps {
		res, err := step(ctx)
		report.Batches = append(report.Batches, res)
		if err != nil {
			return report, err
		}
	}

	v, err := m.Verify(ctx)
	if err != nil {
		return report, err
	}
	report.Verify = v
	return report, nil
}
