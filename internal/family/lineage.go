package family

import "fmt"

// CheckLineage 检查存储数据的一致性，只报告不修改
//
// 代数应为父亲（没有父亲时为母亲）的代数加一；婚姻中丈夫应为男性、妻子应为女性。
func CheckLineage(idx *Index) []Warning {
	var warnings []Warning
	for _, p := range idx.persons {
		parent, ok := idx.Person(p.FatherID)
		if !ok || p.FatherID == "" {
			parent, ok = idx.Person(p.MotherID)
			ok = ok && p.MotherID != ""
		}
		if ok && p.Generation != parent.Generation+1 {
			warnings = append(warnings, Warning{
				Kind:      WarnGeneration,
				PersonID:  p.ID,
				RelatedID: parent.ID,
				Detail:    fmt.Sprintf("generation %d, parent generation %d", p.Generation, parent.Generation),
			})
		}
	}

	for _, m := range idx.marriages {
		if h, ok := idx.Person(m.HusbandID); ok && h.Sex != SexMale {
			warnings = append(warnings, Warning{
				Kind:      WarnMarriageRole,
				PersonID:  h.ID,
				RelatedID: m.WifeID,
				Detail:    "husband is not recorded as male",
			})
		}
		if w, ok := idx.Person(m.WifeID); ok && w.Sex != SexFemale {
			warnings = append(warnings, Warning{
				Kind:      WarnMarriageRole,
				PersonID:  w.ID,
				RelatedID: m.HusbandID,
				Detail:    "wife is not recorded as female",
			})
		}
	}
	return warnings
}
