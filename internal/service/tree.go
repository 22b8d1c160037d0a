package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"silsilah_go/internal/family"
	"silsilah_go/internal/model"
)

// PersonSource 成员数据来源
type PersonSource interface {
	GetBani(ctx context.Context, baniID string) (*model.Bani, error)
	ListByBani(ctx context.Context, baniID string) ([]family.Person, error)
}

// BaniSummary 家族概要
type BaniSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

// TreeQuery 家谱树查询参数
type TreeQuery struct {
	RootID string
	Depth  int // 负数表示不限制
}

// TreeResult 桌面端家谱树
type TreeResult struct {
	Bani     BaniSummary      `json:"bani"`
	Root     *family.TreeNode `json:"root"`
	Warnings []family.Warning `json:"warnings"`
	Members  int              `json:"members"`
}

// Overview 各代人数
type Overview struct {
	Bani          BaniSummary `json:"bani"`
	MaxGeneration int         `json:"max_generation"`
	Counts        []int       `json:"counts"`
	Members       int         `json:"members"`
}

// VisibleRow 展开状态下可见的一行
type VisibleRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Depth       int    `json:"depth"`
	Expanded    bool   `json:"expanded"`
	HasChildren bool   `json:"has_children"`
}

// ExpandResult 展开/折叠后的状态
type ExpandResult struct {
	Expanded family.ExpandState `json:"expanded"`
	Changed  bool               `json:"changed"`
	Rows     []VisibleRow       `json:"rows"`
}

// DrillResult 逐代浏览后的状态
type DrillResult struct {
	State         family.DrillState   `json:"state"`
	Changed       bool                `json:"changed"`
	MaxGeneration int                 `json:"max_generation"`
	Members       []family.SliceEntry `json:"members"`
	Breadcrumbs   []family.Crumb      `json:"breadcrumbs"`
}

// TreeService 家谱树服务
type TreeService struct {
	source    PersonSource
	store     ViewStateStore
	validator *Validator
	config    TreeConfig
	logger    *zap.Logger

	mu       sync.Mutex
	reported map[string]string // bani id -> 已上报数据问题的指纹
}

// NewTreeService 创建家谱树服务实例
func NewTreeService(source PersonSource, store ViewStateStore, config TreeConfig, logger *zap.Logger) *TreeService {
	return &TreeService{
		source:    source,
		store:     store,
		validator: NewValidator(),
		config:    config,
		logger:    logger,
		reported:  make(map[string]string),
	}
}

type snapshot struct {
	bani        BaniSummary
	idx         *family.Index
	fingerprint string
	dropped     []family.Warning // 未通过校验被忽略的记录
}

// load 读取成员并建立索引
func (s *TreeService) load(ctx context.Context, baniID string) (*snapshot, error) {
	bani, err := s.source.GetBani(ctx, baniID)
	if err != nil {
		return nil, FromStore(err, ErrBaniNotFound, "bani not found")
	}

	persons, err := s.source.ListByBani(ctx, baniID)
	if err != nil {
		memberLoadErrors.Inc()
		return nil, FromStore(err, ErrBaniNotFound, "bani not found")
	}
	persons, dropped := s.validator.Valid(persons)

	idx := family.NewIndex(persons,
		family.WithLanguage(s.config.Language()),
		family.WithExpandGeneration(s.config.ExpandGeneration))
	snap := &snapshot{
		bani:        BaniSummary{ID: bani.ID, Name: bani.Name, IsPublic: bani.IsPublic},
		idx:         idx,
		fingerprint: idx.Fingerprint(),
		dropped:     dropped,
	}
	s.reportOnce(snap)
	return snap, nil
}

// reportOnce 同一份数据的问题只记录和计数一次，数据变化后重新上报
func (s *TreeService) reportOnce(snap *snapshot) {
	s.mu.Lock()
	seen := s.reported[snap.bani.ID] == snap.fingerprint
	s.reported[snap.bani.ID] = snap.fingerprint
	s.mu.Unlock()
	if seen {
		return
	}

	warnings := append([]family.Warning{}, snap.dropped...)
	warnings = append(warnings, snap.idx.Warnings()...)
	warnings = append(warnings, family.CheckLineage(snap.idx)...)
	_, build := snap.idx.Tree()
	warnings = append(warnings, build...)
	s.report(snap.bani.ID, warnings)
}

func (s *TreeService) report(baniID string, warnings []family.Warning) {
	countWarnings(warnings)
	for _, w := range warnings {
		s.logger.Warn("family data warning",
			zap.String("bani_id", baniID),
			zap.String("kind", string(w.Kind)),
			zap.String("person_id", w.PersonID),
			zap.String("related_id", w.RelatedID),
			zap.String("detail", w.Detail))
	}
}

// Tree 构建家谱树
func (s *TreeService) Tree(ctx context.Context, baniID string, viewer Viewer, q TreeQuery) (*TreeResult, error) {
	start := time.Now()
	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}

	root, warnings := snap.idx.Tree(
		family.WithRoot(q.RootID),
		family.WithMaxDepth(q.Depth),
		family.WithProjection(viewer.Projection(baniID)),
	)
	observeBuild("desktop", start, root)

	all := append([]family.Warning{}, snap.dropped...)
	all = append(all, snap.idx.Warnings()...)
	all = append(all, warnings...)
	return &TreeResult{
		Bani:     snap.bani,
		Root:     root,
		Warnings: all,
		Members:  snap.idx.Len(),
	}, nil
}

// Overview 最大代数和各代人数
func (s *TreeService) Overview(ctx context.Context, baniID string) (*Overview, error) {
	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}
	counts := snap.idx.GenerationCounts()
	if counts == nil {
		counts = []int{}
	}
	return &Overview{
		Bani:          snap.bani,
		MaxGeneration: snap.idx.MaxGeneration(),
		Counts:        counts,
		Members:       snap.idx.Len(),
	}, nil
}

// Generation 分页获取某一代成员，可按父母过滤
func (s *TreeService) Generation(ctx context.Context, baniID string, viewer Viewer, gen int, parentID string, page, size int) (*family.Page, error) {
	if gen < 0 {
		return nil, NewError(ErrInvalidInput, "generation must be non-negative", nil).
			WithContext("generation", gen)
	}
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = s.config.PageSize
	case size > s.config.MaxPageSize:
		size = s.config.MaxPageSize
	}

	start := time.Now()
	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}
	entries := snap.idx.Slice(gen, parentID, viewer.Projection(baniID))
	observeBuild("mobile", start, nil)

	result := family.Paginate(entries, page, size)
	return &result, nil
}

// state 读取会话视图状态，成员列表变化或不存在时返回初始状态
func (s *TreeService) state(ctx context.Context, sessionID string, snap *snapshot) *ViewState {
	fresh := &ViewState{
		BaniID:      snap.bani.ID,
		Fingerprint: snap.fingerprint,
		Expanded:    family.NewExpandState(snap.idx),
	}
	if sessionID == "" {
		return fresh
	}

	stored, ok, err := s.store.Load(ctx, sessionID, snap.bani.ID)
	if err != nil {
		s.logger.Warn("failed to load view state",
			zap.String("bani_id", snap.bani.ID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return fresh
	}
	if !ok {
		return fresh
	}
	if stored.Fingerprint != snap.fingerprint {
		s.logger.Debug("member list changed, resetting view state",
			zap.String("bani_id", snap.bani.ID),
			zap.String("session_id", sessionID))
		return fresh
	}
	return stored
}

func (s *TreeService) save(ctx context.Context, sessionID string, state *ViewState) {
	if sessionID == "" {
		return
	}
	state.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		s.logger.Warn("failed to save view state",
			zap.String("bani_id", state.BaniID),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

// Expand 应用展开/折叠动作，action 为 nil 时只返回当前状态
func (s *TreeService) Expand(ctx context.Context, baniID, sessionID string, viewer Viewer, action *family.ExpandAction) (*ExpandResult, error) {
	if action != nil {
		if err := s.validator.Struct(action); err != nil {
			return nil, NewError(ErrInvalidInput, "invalid expand action", err)
		}
	}

	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}
	vs := s.state(ctx, sessionID, snap)

	changed := false
	if action != nil {
		next := family.ReduceExpand(vs.Expanded, *action, snap.idx)
		changed = !next.Equal(vs.Expanded)
		countTransition("expand", string(action.Kind), changed)
		vs.Expanded = next
		s.save(ctx, sessionID, vs)
	}

	root, _ := snap.idx.Tree(family.WithProjection(viewer.Projection(baniID)))
	return &ExpandResult{
		Expanded: vs.Expanded,
		Changed:  changed,
		Rows:     rows(family.Visible(root, vs.Expanded)),
	}, nil
}

func rows(visible []family.Row) []VisibleRow {
	out := make([]VisibleRow, 0, len(visible))
	for _, r := range visible {
		out = append(out, VisibleRow{
			ID:          r.Node.ID(),
			Name:        r.Node.Person.Name,
			Depth:       r.Depth,
			Expanded:    r.Expanded,
			HasChildren: r.HasChildren,
		})
	}
	return out
}

// Drill 应用逐代浏览动作，action 为 nil 时只返回当前状态
func (s *TreeService) Drill(ctx context.Context, baniID, sessionID string, viewer Viewer, action *family.DrillAction) (*DrillResult, error) {
	if action != nil {
		if err := s.validator.Struct(action); err != nil {
			return nil, NewError(ErrInvalidInput, "invalid drill action", err)
		}
	}

	snap, err := s.load(ctx, baniID)
	if err != nil {
		return nil, err
	}
	vs := s.state(ctx, sessionID, snap)

	changed := false
	if action != nil {
		next := family.ReduceDrill(vs.Drill, *action, snap.idx)
		changed = next != vs.Drill
		countTransition("drill", string(action.Kind), changed)
		vs.Drill = next
		s.save(ctx, sessionID, vs)
	}

	crumbs := family.Breadcrumbs(vs.Drill, snap.idx)
	if crumbs == nil {
		crumbs = []family.Crumb{}
	}
	return &DrillResult{
		State:         vs.Drill,
		Changed:       changed,
		MaxGeneration: snap.idx.MaxGeneration(),
		Members:       family.Displayed(vs.Drill, snap.idx, viewer.Projection(baniID)),
		Breadcrumbs:   crumbs,
	}, nil
}

// ResetView 清除会话视图状态
func (s *TreeService) ResetView(ctx context.Context, baniID, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID, baniID); err != nil {
		return NewError(ErrInternal, "failed to reset view state", err)
	}
	return nil
}
