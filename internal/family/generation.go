package family

// MaxGeneration 列表中的最大代数，空列表返回 0
func MaxGeneration(persons []Person) int {
	highest := 0
	for i := range persons {
		if persons[i].Generation > highest {
			highest = persons[i].Generation
		}
	}
	return highest
}

// ByGeneration 第 gen 代的成员，parentID 非空时只保留父亲或母亲为 parentID 的成员
func ByGeneration(persons []Person, gen int, parentID string) []Person {
	var out []Person
	for i := range persons {
		p := &persons[i]
		if p.Generation != gen {
			continue
		}
		if parentID != "" && !p.IsChildOf(parentID) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// ChildCount 第 gen 代中父亲或母亲为 parentID 的人数
func ChildCount(persons []Person, parentID string, gen int) int {
	if parentID == "" {
		return 0
	}
	n := 0
	for i := range persons {
		if persons[i].Generation == gen && persons[i].IsChildOf(parentID) {
			n++
		}
	}
	return n
}

// SliceEntry 移动端单代列表中的一项
type SliceEntry struct {
	Person     PersonView `json:"person"`
	Spouses    []Spouse   `json:"spouses,omitempty"`
	ChildCount int        `json:"child_count"`
}

// Slice 第 gen 代（可按父母过滤）的成员及其下一代子女数
func (idx *Index) Slice(gen int, parentID string, proj Projection) []SliceEntry {
	if proj == nil {
		proj = MemberProjection
	}
	members := idx.ByGeneration(gen, parentID)
	entries := make([]SliceEntry, 0, len(members))
	for _, p := range members {
		entries = append(entries, SliceEntry{
			Person:     proj(p),
			Spouses:    idx.Spouses(p.ID),
			ChildCount: idx.ChildCount(p.ID, gen+1),
		})
	}
	return entries
}

// Page 分页结果
type Page struct {
	Items []SliceEntry `json:"items"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Total int          `json:"total"`
	Pages int          `json:"pages"`
}

// Paginate 对单代列表分页，page 从 1 开始，size <= 0 表示不分页
func Paginate(entries []SliceEntry, page, size int) Page {
	total := len(entries)
	if size <= 0 {
		return Page{Items: entries, Page: 1, Size: total, Total: total, Pages: 1}
	}
	if page < 1 {
		page = 1
	}
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	// 超出最后一页时不做乘法，避免溢出
	start, end := total, total
	if page <= pages {
		start = (page - 1) * size
		end = start + size
		if end > total {
			end = total
		}
	}
	return Page{
		Items: entries[start:end],
		Page:  page,
		Size:  size,
		Total: total,
		Pages: pages,
	}
}
