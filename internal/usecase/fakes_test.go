package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"
	"skill-ladder/internal/repository"

	"github.com/google/uuid"
)

var errFake = errors.New("fake failure")

type fakeFrameworkRepo struct {
	mu sync.Mutex

	roles        []repository.RoleRow
	competencies []repository.CompetencyRow
	subs         map[uuid.UUID]repository.SubCompetencyRow
	subOrder     []uuid.UUID

	failGet    map[uuid.UUID]bool
	failList   bool
	writes     int
	replaced   map[uuid.UUID][]framework.Competency
	replaceErr error
}

func newFakeFrameworkRepo() *fakeFrameworkRepo {
	return &fakeFrameworkRepo{
		subs:     map[uuid.UUID]repository.SubCompetencyRow{},
		failGet:  map[uuid.UUID]bool{},
		replaced: map[uuid.UUID][]framework.Competency{},
	}
}

func (f *fakeFrameworkRepo) addRole(name, roleType string) repository.RoleRow {
	r := repository.RoleRow{ID: uuid.New(), Name: name, Type: roleType, CreatedAt: time.Now().UTC()}
	f.roles = append(f.roles, r)
	return r
}

func (f *fakeFrameworkRepo) addCompetency(roleID uuid.UUID, title string, order int) repository.CompetencyRow {
	c := repository.CompetencyRow{ID: uuid.New(), RoleID: roleID, Title: title, OrderIndex: order}
	f.competencies = append(f.competencies, c)
	return c
}

func (f *fakeFrameworkRepo) addSub(competencyID uuid.UUID, title string, raw string, legacy framework.LegacyFields) repository.SubCompetencyRow {
	s := repository.SubCompetencyRow{
		ID:           uuid.New(),
		CompetencyID: competencyID,
		Title:        title,
		Legacy:       legacy,
	}
	if raw != "" {
		s.LevelCriteria = []byte(raw)
	}
	f.subs[s.ID] = s
	f.subOrder = append(f.subOrder, s.ID)
	return s
}

func (f *fakeFrameworkRepo) criteria(id uuid.UUID) framework.UnifiedMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := framework.DecodeLevelCriteria(f.subs[id].LevelCriteria)
	if err != nil {
		panic(err)
	}
	return m
}

func (f *fakeFrameworkRepo) ListRoles(context.Context) ([]repository.RoleRow, error) {
	if f.failList {
		return nil, errFake
	}
	return append([]repository.RoleRow(nil), f.roles...), nil
}

func (f *fakeFrameworkRepo) GetRole(_ context.Context, id uuid.UUID) (repository.RoleRow, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return repository.RoleRow{}, repository.ErrRoleNotFound
}

func (f *fakeFrameworkRepo) ListCompetenciesByRole(_ context.Context, roleID uuid.UUID) ([]repository.CompetencyRow, error) {
	out := make([]repository.CompetencyRow, 0)
	for _, c := range f.competencies {
		if c.RoleID == roleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFrameworkRepo) ListSubCompetenciesByCompetency(_ context.Context, competencyID uuid.UUID) ([]repository.SubCompetencyRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.SubCompetencyRow, 0)
	for _, id := range f.subOrder {
		if s := f.subs[id]; s.CompetencyID == competencyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeFrameworkRepo) ListSubCompetencies(context.Context) ([]repository.SubCompetencyRow, error) {
	if f.failList {
		return nil, errFake
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.SubCompetencyRow, 0, len(f.subOrder))
	for _, id := range f.subOrder {
		out = append(out, f.subs[id])
	}
	return out, nil
}

func (f *fakeFrameworkRepo) GetSubCompetency(_ context.Context, id uuid.UUID) (repository.SubCompetencyRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet[id] {
		return repository.SubCompetencyRow{}, errFake
	}
	s, ok := f.subs[id]
	if !ok {
		return repository.SubCompetencyRow{}, repository.ErrSubCompetencyNotFound
	}
	return s, nil
}

func (f *fakeFrameworkRepo) UpdateLevelCriteria(_ context.Context, id uuid.UUID, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return repository.ErrSubCompetencyNotFound
	}
	s.LevelCriteria = append([]byte(nil), raw...)
	f.subs[id] = s
	f.writes++
	return nil
}

func (f *fakeFrameworkRepo) ReplaceFramework(_ context.Context, roleID uuid.UUID, competencies []framework.Competency) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced[roleID] = competencies
	return nil
}

type fakeLevelRepo struct {
	mu        sync.Mutex
	byRole    map[uuid.UUID][]level.Level
	failCount map[uuid.UUID]bool
	inserts   int
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{byRole: map[uuid.UUID][]level.Level{}, failCount: map[uuid.UUID]bool{}}
}

func (f *fakeLevelRepo) ListByRole(_ context.Context, roleID uuid.UUID) ([]level.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]level.Level(nil), f.byRole[roleID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeLevelRepo) CountByRole(_ context.Context, roleID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCount[roleID] {
		return 0, errFake
	}
	return len(f.byRole[roleID]), nil
}

func (f *fakeLevelRepo) InsertLevels(_ context.Context, roleID uuid.UUID, levels []level.Level) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range levels {
		if _, ok := level.Find(f.byRole[roleID], l.Key); ok {
			continue
		}
		f.byRole[roleID] = append(f.byRole[roleID], l)
		n++
	}
	f.inserts += int(n)
	return n, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]any
	deleted []string
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]any{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if dst, ok := out.(*ExportResult); ok {
		*dst = v.(ExportResult)
	}
	return true, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	c.entries = map[string]any{}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []BatchResult
}

func (n *fakeNotifier) NotifyLevelsMigrated(res BatchResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, res)
}
