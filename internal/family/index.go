package family

import (
	"fmt"
	"hash/fnv"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Option 构建选项
type Option func(*options)

type options struct {
	rootID     string
	projection Projection
	lang       language.Tag
	maxDepth   int
	expandGen  int
}

func newOptions(opts []Option) *options {
	o := &options{
		projection: MemberProjection,
		lang:       language.Indonesian,
		maxDepth:   -1,
		expandGen:  DefaultExpandGeneration,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRoot 指定根节点，不在列表中时回退到默认规则
func WithRoot(id string) Option {
	return func(o *options) { o.rootID = id }
}

// WithProjection 指定可见字段
func WithProjection(p Projection) Option {
	return func(o *options) {
		if p != nil {
			o.projection = p
		}
	}
}

// WithLanguage 指定姓名排序所用的语言
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// WithMaxDepth 限制从根节点向下展开的代数，负数表示不限制
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithExpandGeneration 默认展开状态包含的最大代数
func WithExpandGeneration(gen int) Option {
	return func(o *options) { o.expandGen = gen }
}

// Index 一次快照上的成员索引
//
// 只读，不修改输入；数据变化后需要重新构建。
type Index struct {
	persons   []*Person
	byID      map[string]*Person
	children  map[string][]*Person
	byGen     map[int][]*Person
	maxGen    int
	marriages []Marriage
	warnings  []Warning
	expandGen int
}

// NewIndex 建立索引
func NewIndex(persons []Person, opts ...Option) *Index {
	o := newOptions(opts)
	idx := &Index{
		byID:      make(map[string]*Person, len(persons)),
		children:  make(map[string][]*Person),
		byGen:     make(map[int][]*Person),
		expandGen: o.expandGen,
	}

	for i := range persons {
		p := &persons[i]
		if _, dup := idx.byID[p.ID]; dup {
			idx.warn(WarnDuplicateID, p.ID, "", "duplicate record ignored")
			continue
		}
		idx.byID[p.ID] = p
		idx.persons = append(idx.persons, p)
		idx.byGen[p.Generation] = append(idx.byGen[p.Generation], p)
		if p.Generation > idx.maxGen {
			idx.maxGen = p.Generation
		}
	}

	for _, p := range idx.persons {
		// 父母都在列表里时只挂一次到各自名下
		if p.FatherID != "" {
			idx.children[p.FatherID] = append(idx.children[p.FatherID], p)
		}
		if p.MotherID != "" && p.MotherID != p.FatherID {
			idx.children[p.MotherID] = append(idx.children[p.MotherID], p)
		}
		for _, parentID := range []string{p.FatherID, p.MotherID} {
			if parentID == "" {
				continue
			}
			if _, ok := idx.byID[parentID]; !ok {
				idx.warn(WarnDanglingParent, p.ID, parentID, "parent not in member list")
			}
		}
	}

	col := collate.New(o.lang)
	for _, kids := range idx.children {
		sortByName(col, kids)
	}
	for _, members := range idx.byGen {
		sortByName(col, members)
	}

	idx.marriages = CollectMarriages(persons)
	for _, m := range idx.marriages {
		for _, id := range []string{m.HusbandID, m.WifeID} {
			if _, ok := idx.byID[id]; !ok {
				idx.warn(WarnUnknownSpouse, m.Other(id), id, "spouse not in member list")
			}
		}
	}
	return idx
}

func sortByName(col *collate.Collator, persons []*Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		if c := col.CompareString(persons[i].Name, persons[j].Name); c != 0 {
			return c < 0
		}
		return persons[i].ID < persons[j].ID
	})
}

func (idx *Index) warn(kind WarningKind, personID, relatedID, detail string) {
	idx.warnings = append(idx.warnings, Warning{
		Kind:      kind,
		PersonID:  personID,
		RelatedID: relatedID,
		Detail:    detail,
	})
}

// Len 成员数
func (idx *Index) Len() int {
	return len(idx.persons)
}

// Person 按 id 查找成员
func (idx *Index) Person(id string) (*Person, bool) {
	p, ok := idx.byID[id]
	return p, ok
}

// Children 子女列表，已去重并按姓名排序
func (idx *Index) Children(id string) []*Person {
	kids := idx.children[id]
	out := make([]*Person, len(kids))
	copy(out, kids)
	return out
}

// HasChildren 是否有子女，不在列表中的 id 总是没有
func (idx *Index) HasChildren(id string) bool {
	if _, ok := idx.byID[id]; !ok {
		return false
	}
	return len(idx.children[id]) > 0
}

// Spouses 配偶列表
func (idx *Index) Spouses(id string) []Spouse {
	return SpousesOf(id, idx.marriages, idx.Person)
}

// Warnings 建索引时发现的数据问题
func (idx *Index) Warnings() []Warning {
	out := make([]Warning, len(idx.warnings))
	copy(out, idx.warnings)
	return out
}

// MaxGeneration 最大代数，空列表返回 0
func (idx *Index) MaxGeneration() int {
	return idx.maxGen
}

// ByGeneration 第 gen 代的成员，按姓名排序；parentID 非空时只保留其子女
func (idx *Index) ByGeneration(gen int, parentID string) []*Person {
	var out []*Person
	for _, p := range idx.byGen[gen] {
		if parentID == "" || p.IsChildOf(parentID) {
			out = append(out, p)
		}
	}
	return out
}

// ChildCount 第 gen 代中父亲或母亲为 parentID 的人数
func (idx *Index) ChildCount(parentID string, gen int) int {
	if parentID == "" {
		return 0
	}
	return len(idx.ByGeneration(gen, parentID))
}

// GenerationCounts 每一代的人数，下标即代数
func (idx *Index) GenerationCounts() []int {
	if len(idx.persons) == 0 {
		return nil
	}
	counts := make([]int, idx.maxGen+1)
	for gen, members := range idx.byGen {
		if gen >= 0 {
			counts[gen] = len(members)
		}
	}
	return counts
}

// Root 按规则确定根节点：指定 id、第一个 0 代成员、代数最小的成员
func (idx *Index) Root(rootID string) (*Person, []Warning) {
	if len(idx.persons) == 0 {
		return nil, nil
	}
	var warnings []Warning
	if rootID != "" {
		if p, ok := idx.byID[rootID]; ok {
			return p, nil
		}
		warnings = append(warnings, Warning{
			Kind:     WarnRootNotFound,
			PersonID: rootID,
			Detail:   "requested root not in member list, falling back",
		})
	}

	var root *Person
	for _, p := range idx.persons {
		if p.Generation == 0 {
			return p, warnings
		}
		if root == nil || p.Generation < root.Generation {
			root = p
		}
	}
	return root, warnings
}

// Fingerprint 成员列表的指纹，用来判断视图状态是否需要重置
func (idx *Index) Fingerprint() string {
	h := fnv.New64a()
	for _, p := range idx.persons {
		fmt.Fprintf(h, "%s|%s|%s|%d\n", p.ID, p.FatherID, p.MotherID, p.Generation)
	}
	return fmt.Sprintf("%d-%016x", len(idx.persons), h.Sum64())
}
