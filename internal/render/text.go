// Package render 家谱树的文本导出
package render

import (
	"fmt"
	"io"
	"strings"

	"silsilah_go/internal/family"
)

// Options 文本输出选项
type Options struct {
	// Expanded 为 nil 时展开全部节点
	Expanded *family.ExpandState
	// ShowSpouses 在成员后列出配偶
	ShowSpouses bool
}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) line(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format+"\n", args...)
}

// Tree 以缩进树的形式输出
func Tree(out io.Writer, root *family.TreeNode, opts Options) error {
	if root == nil {
		return nil
	}
	w := &writer{w: out}
	w.line("%s", label(root, opts))
	writeChildren(w, root, "", opts)
	return w.err
}

func writeChildren(w *writer, n *family.TreeNode, prefix string, opts Options) {
	if opts.Expanded != nil && !opts.Expanded.Expanded(n.ID()) {
		return
	}
	for i, c := range n.Children {
		branch, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, next = "└── ", "    "
		}
		w.line("%s%s%s", prefix, branch, label(c, opts))
		writeChildren(w, c, prefix+next, opts)
	}
}

func label(n *family.TreeNode, opts Options) string {
	var sb strings.Builder
	sb.WriteString(n.Person.Name)
	fmt.Fprintf(&sb, " [%d]", n.Person.Generation)
	if !n.Person.Alive {
		sb.WriteString(" †")
	}
	if opts.ShowSpouses && len(n.Spouses) > 0 {
		sb.WriteString(" = ")
		sb.WriteString(spouseNames(n.Spouses))
	}
	collapsed := opts.Expanded != nil && !opts.Expanded.Expanded(n.ID()) && len(n.Children) > 0
	if collapsed || n.HasMoreChildren {
		sb.WriteString(" …")
	}
	return sb.String()
}

func spouseNames(spouses []family.Spouse) string {
	names := make([]string, 0, len(spouses))
	for _, s := range spouses {
		if s.Active {
			names = append(names, s.Name)
		} else {
			names = append(names, "("+s.Name+")")
		}
	}
	return strings.Join(names, ", ")
}

// Generation 输出单代列表，crumbs 非空时先输出路径
func Generation(out io.Writer, gen int, entries []family.SliceEntry, crumbs []family.Crumb) error {
	w := &writer{w: out}
	if len(crumbs) > 0 {
		names := make([]string, 0, len(crumbs))
		for _, c := range crumbs {
			names = append(names, c.Name)
		}
		w.line("%s", strings.Join(names, " > "))
	}
	w.line("Generation %d (%d)", gen, len(entries))
	for _, e := range entries {
		line := "  " + e.Person.Name
		if len(e.Spouses) > 0 {
			line += " = " + spouseNames(e.Spouses)
		}
		if e.ChildCount > 0 {
			line += fmt.Sprintf(" (%d children)", e.ChildCount)
		}
		w.line("%s", line)
	}
	return w.err
}
