package family

// DrillState 移动端逐代浏览状态
type DrillState struct {
	Generation int    `json:"generation"`
	ParentID   string `json:"parent_id,omitempty"`
}

// DrillActionKind 逐代浏览操作类型
type DrillActionKind string

const (
	DrillJump DrillActionKind = "jump"  // 跳到某一代，不过滤
	DrillInto DrillActionKind = "drill" // 进入某人的子女
	DrillBack DrillActionKind = "back"  // 返回上一级
)

// DrillAction 逐代浏览操作
type DrillAction struct {
	Kind       DrillActionKind `json:"action" validate:"required,oneof=jump drill back"`
	ID         string          `json:"id,omitempty" validate:"required_if=Kind drill"`
	Generation int             `json:"generation,omitempty" validate:"gte=0"`
}

// ReduceDrill 逐代浏览状态归约，前置条件不满足时原样返回
func ReduceDrill(state DrillState, action DrillAction, idx *Index) DrillState {
	switch action.Kind {
	case DrillJump:
		gen := action.Generation
		if gen < 0 {
			gen = 0
		}
		if top := idx.MaxGeneration(); gen > top {
			gen = top
		}
		return DrillState{Generation: gen}
	case DrillInto:
		if state.Generation >= idx.MaxGeneration() {
			return state
		}
		if idx.ChildCount(action.ID, state.Generation+1) == 0 {
			return state
		}
		return DrillState{Generation: state.Generation + 1, ParentID: action.ID}
	case DrillBack:
		return goBack(state, idx)
	}
	return state
}

func goBack(state DrillState, idx *Index) DrillState {
	if state.ParentID != "" && state.Generation > 0 {
		return DrillState{
			Generation: state.Generation - 1,
			ParentID:   parentOf(state.ParentID, idx),
		}
	}
	gen := state.Generation - 1
	if gen < 0 {
		gen = 0
	}
	return DrillState{Generation: gen}
}

// parentOf 优先取父亲，不在列表中的父母视为未记录
func parentOf(id string, idx *Index) string {
	p, ok := idx.Person(id)
	if !ok {
		return ""
	}
	if _, ok := idx.Person(p.FatherID); ok && p.FatherID != "" {
		return p.FatherID
	}
	if _, ok := idx.Person(p.MotherID); ok && p.MotherID != "" {
		return p.MotherID
	}
	return ""
}

// Displayed 当前状态下应显示的成员
func Displayed(state DrillState, idx *Index, proj Projection) []SliceEntry {
	return idx.Slice(state.Generation, state.ParentID, proj)
}

// Crumb 面包屑中的一级
type Crumb struct {
	PersonID   string `json:"person_id"`
	Name       string `json:"name"`
	Generation int    `json:"generation"`
}

// Breadcrumbs 从最上层祖先到当前选中父母的路径，未选中父母时为空
func Breadcrumbs(state DrillState, idx *Index) []Crumb {
	var crumbs []Crumb
	seen := make(map[string]bool)
	for id := state.ParentID; id != "" && !seen[id]; id = parentOf(id, idx) {
		seen[id] = true
		p, ok := idx.Person(id)
		if !ok {
			break
		}
		crumbs = append(crumbs, Crumb{PersonID: p.ID, Name: p.Name, Generation: p.Generation})
	}
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs
}
