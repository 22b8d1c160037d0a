package family

import (
	"sort"
	"time"
)

// Role 婚姻中的一方
type Role string

const (
	RoleHusband Role = "husband" // 丈夫
	RoleWife    Role = "wife"    // 妻子
)

// Marriage 婚姻记录，双方对称
//
// 同一条婚姻可以同时挂在丈夫和妻子两边，合并时按 (HusbandID, WifeID) 去重。
type Marriage struct {
	HusbandID string     `json:"husband_id" yaml:"husband_id" validate:"required"`
	WifeID    string     `json:"wife_id" yaml:"wife_id" validate:"required,nefield=HusbandID"`
	Order     int        `json:"order" yaml:"order" validate:"gte=0"`
	Date      *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Active    bool       `json:"active" yaml:"active"`
}

// Role 返回 personID 在这段婚姻中的身份，不属于这段婚姻时返回空
func (m Marriage) Role(personID string) Role {
	switch personID {
	case m.HusbandID:
		return RoleHusband
	case m.WifeID:
		return RoleWife
	}
	return ""
}

// Other 返回配偶 id
func (m Marriage) Other(personID string) string {
	switch personID {
	case m.HusbandID:
		return m.WifeID
	case m.WifeID:
		return m.HusbandID
	}
	return ""
}

type marriageKey struct {
	husband string
	wife    string
}

// CollectMarriages 合并所有成员身上的婚姻记录
func CollectMarriages(persons []Person) []Marriage {
	seen := make(map[marriageKey]struct{})
	var out []Marriage
	for i := range persons {
		for _, m := range persons[i].Marriages {
			if m.HusbandID == "" || m.WifeID == "" {
				continue
			}
			key := marriageKey{m.HusbandID, m.WifeID}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// Spouse 配偶摘要
type Spouse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Photo     string     `json:"photo,omitempty"`
	Sex       Sex        `json:"sex"`
	Role      Role       `json:"role"`
	Order     int        `json:"order"`
	Active    bool       `json:"active"`
	MarriedOn *time.Time `json:"married_on,omitempty"`
}

// SpousesOf 按婚姻顺序返回 personID 的所有配偶
//
// 找不到对应成员的配偶会被跳过。
func SpousesOf(personID string, marriages []Marriage, lookup func(id string) (*Person, bool)) []Spouse {
	spouses := make([]Spouse, 0)
	for _, m := range marriages {
		otherID := m.Other(personID)
		if otherID == "" {
			continue
		}
		other, ok := lookup(otherID)
		if !ok {
			continue
		}
		spouses = append(spouses, Spouse{
			ID:        other.ID,
			Name:      other.Name,
			Photo:     other.Photo,
			Sex:       other.Sex,
			Role:      m.Role(otherID),
			Order:     m.Order,
			Active:    m.Active,
			MarriedOn: m.Date,
		})
	}

	sort.SliceStable(spouses, func(i, j int) bool {
		if spouses[i].Order != spouses[j].Order {
			return spouses[i].Order < spouses[j].Order
		}
		a, b := spouses[i].MarriedOn, spouses[j].MarriedOn
		switch {
		case a != nil && b != nil:
			return a.Before(*b)
		case a != nil:
			return true
		}
		return false
	})
	return spouses
}
