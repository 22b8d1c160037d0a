package family

import "fmt"

// TreeNode 渲染用的树节点，每次查询重新构建
type TreeNode struct {
	Person   PersonView  `json:"person"`
	Spouses  []Spouse    `json:"spouses"`
	Children []*TreeNode `json:"children"`
	// HasMoreChildren 子女因代数上限或成环被截断
	HasMoreChildren bool `json:"has_more_children,omitempty"`
}

// ID 节点对应的成员 id
func (n *TreeNode) ID() string {
	return n.Person.ID
}

// Size 子树节点数
func (n *TreeNode) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Walk 先序遍历，fn 返回 false 时不再深入该节点
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(node *TreeNode, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// BuildTree 从扁平的成员列表构建家谱树
//
// 空列表返回 nil。数据成环时不会死循环，成环的分支被截断并给出 WarnCycle。
func BuildTree(persons []Person, opts ...Option) (*TreeNode, []Warning) {
	if len(persons) == 0 {
		return nil, nil
	}
	return NewIndex(persons, opts...).Tree(opts...)
}

// Tree 在已有索引上构建家谱树
func (idx *Index) Tree(opts ...Option) (*TreeNode, []Warning) {
	o := newOptions(opts)
	root, warnings := idx.Root(o.rootID)
	if root == nil {
		return nil, warnings
	}

	b := &treeBuilder{
		idx:      idx,
		opts:     o,
		path:     make(map[string]bool),
		warnings: warnings,
	}
	node := b.build(root, 0)
	return node, b.warnings
}

type treeBuilder struct {
	idx      *Index
	opts     *options
	path     map[string]bool // 当前递归路径上的祖先
	warnings []Warning
}

func (b *treeBuilder) build(p *Person, depth int) *TreeNode {
	b.path[p.ID] = true
	defer delete(b.path, p.ID)

	node := &TreeNode{
		Person:   b.opts.projection(p),
		Spouses:  b.idx.Spouses(p.ID),
		Children: []*TreeNode{},
	}

	kids := b.idx.Children(p.ID)
	if len(kids) == 0 {
		return node
	}
	if b.opts.maxDepth >= 0 && depth >= b.opts.maxDepth {
		node.HasMoreChildren = true
		b.warnings = append(b.warnings, Warning{
			Kind:     WarnDepthTruncated,
			PersonID: p.ID,
			Detail:   fmt.Sprintf("children beyond depth %d omitted", b.opts.maxDepth),
		})
		return node
	}

	for _, kid := range kids {
		if b.path[kid.ID] {
			node.HasMoreChildren = true
			b.warnings = append(b.warnings, Warning{
				Kind:      WarnCycle,
				PersonID:  kid.ID,
				RelatedID: p.ID,
				Detail:    "person is listed as a descendant of itself",
			})
			continue
		}
		node.Children = append(node.Children, b.build(kid, depth+1))
	}
	return node
}
