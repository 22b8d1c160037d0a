package family

import (
	"encoding/json"
	"sort"
)

// DefaultExpandGeneration 默认展开到第几代（含）
const DefaultExpandGeneration = 1

// ExpandState 桌面端展开/收起状态，值语义，归约函数总是返回新状态
type ExpandState struct {
	ids map[string]struct{}
}

// NewExpandState 默认状态：建索引时指定的代数（默认前两代）全部展开
func NewExpandState(idx *Index) ExpandState {
	return expandUpTo(idx, idx.expandGen)
}

// expandUpTo 代数不超过 gen 的成员全部展开
func expandUpTo(idx *Index, gen int) ExpandState {
	s := ExpandState{ids: make(map[string]struct{})}
	for _, p := range idx.persons {
		if p.Generation <= gen {
			s.ids[p.ID] = struct{}{}
		}
	}
	return s
}

// ExpandStateOf 由 id 列表恢复状态
func ExpandStateOf(ids ...string) ExpandState {
	s := ExpandState{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Expanded 节点是否展开
func (s ExpandState) Expanded(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len 已展开节点数
func (s ExpandState) Len() int {
	return len(s.ids)
}

// IDs 已展开的 id，按字典序
func (s ExpandState) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal 两个状态是否相同
func (s ExpandState) Equal(other ExpandState) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.Expanded(id) {
			return false
		}
	}
	return true
}

func (s ExpandState) clone() ExpandState {
	c := ExpandState{ids: make(map[string]struct{}, len(s.ids)+1)}
	for id := range s.ids {
		c.ids[id] = struct{}{}
	}
	return c
}

func (s ExpandState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *ExpandState) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = ExpandStateOf(ids...)
	return nil
}

// ExpandActionKind 展开操作类型
type ExpandActionKind string

const (
	ExpandToggle   ExpandActionKind = "toggle"       // 切换单个节点
	ExpandAll      ExpandActionKind = "expand_all"   // 全部展开
	ExpandCollapse ExpandActionKind = "collapse_all" // 全部收起
	ExpandReset    ExpandActionKind = "reset"        // 恢复默认
)

// ExpandAction 展开操作
type ExpandAction struct {
	Kind ExpandActionKind `json:"action" validate:"required,oneof=toggle expand_all collapse_all reset"`
	ID   string           `json:"id,omitempty" validate:"required_if=Kind toggle"`
}

// ReduceExpand 展开状态归约
//
// 对没有子女的节点 toggle 不做任何改变。
func ReduceExpand(state ExpandState, action ExpandAction, idx *Index) ExpandState {
	switch action.Kind {
	case ExpandToggle:
		if !idx.HasChildren(action.ID) {
			return state
		}
		next := state.clone()
		if next.Expanded(action.ID) {
			delete(next.ids, action.ID)
		} else {
			next.ids[action.ID] = struct{}{}
		}
		return next
	case ExpandAll:
		next := ExpandState{ids: make(map[string]struct{})}
		for _, p := range idx.persons {
			if idx.HasChildren(p.ID) {
				next.ids[p.ID] = struct{}{}
			}
		}
		return next
	case ExpandCollapse:
		return ExpandState{ids: make(map[string]struct{})}
	case ExpandReset:
		return NewExpandState(idx)
	}
	return state
}

// Row 展开后可见的一行
type Row struct {
	Node        *TreeNode `json:"-"`
	Depth       int       `json:"depth"`
	Expanded    bool      `json:"expanded"`
	HasChildren bool      `json:"has_children"`
}

// Visible 按展开状态把树拍平成可见行，根节点总是可见
func Visible(root *TreeNode, state ExpandState) []Row {
	var rows []Row
	root.Walk(func(n *TreeNode, depth int) bool {
		expanded := state.Expanded(n.ID())
		rows = append(rows, Row{
			Node:        n,
			Depth:       depth,
			Expanded:    expanded,
			HasChildren: len(n.Children) > 0 || n.HasMoreChildren,
		})
		return expanded
	})
	return rows
}
