package family

import (
	"time"
)

// Sex 生理性别
type Sex string

const (
	SexMale   Sex = "MALE"   // 男
	SexFemale Sex = "FEMALE" // 女
)

// Valid 是否为已知取值
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Person 家族成员快照
//
// FatherID/MotherID 为空表示未记录父母（根节点或外来祖先）。
// Generation 由存储层给出，本包不重新计算。
type Person struct {
	ID         string     `json:"id" yaml:"id" validate:"required"`
	Name       string     `json:"name" yaml:"name" validate:"required,max=100"`
	Nickname   string     `json:"nickname,omitempty" yaml:"nickname,omitempty" validate:"max=50"`
	Sex        Sex        `json:"sex" yaml:"sex" validate:"required,oneof=MALE FEMALE"`
	Alive      bool       `json:"alive" yaml:"alive"`
	BirthDate  *time.Time `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	FatherID   string     `json:"father_id,omitempty" yaml:"father_id,omitempty"`
	MotherID   string     `json:"mother_id,omitempty" yaml:"mother_id,omitempty"`
	Generation int        `json:"generation" yaml:"generation" validate:"gte=0"`
	Photo      string     `json:"photo,omitempty" yaml:"photo,omitempty"`
	Phone      string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	City       string     `json:"city,omitempty" yaml:"city,omitempty"`
	Marriages  []Marriage `json:"marriages,omitempty" yaml:"marriages,omitempty" validate:"dive"`
}

// IsChildOf 父亲或母亲是否为 parentID
func (p *Person) IsChildOf(parentID string) bool {
	if parentID == "" {
		return false
	}
	return p.FatherID == parentID || p.MotherID == parentID
}

// PersonView 渲染层可见字段
type PersonView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Nickname   string     `json:"nickname,omitempty"`
	Sex        Sex        `json:"sex"`
	Alive      bool       `json:"alive"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty"`
	Generation int        `json:"generation"`
	Photo      string     `json:"photo,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	City       string     `json:"city,omitempty"`
}

// Projection 决定哪些字段对当前视图可见
type Projection func(p *Person) PersonView

// MemberProjection 已登录成员视图（桌面端、移动端）
func MemberProjection(p *Person) PersonView {
	return PersonView{
		ID:         p.ID,
		Name:       p.Name,
		Nickname:   p.Nickname,
		Sex:        p.Sex,
		Alive:      p.Alive,
		BirthDate:  p.BirthDate,
		DeathDate:  p.DeathDate,
		Generation: p.Generation,
		Photo:      p.Photo,
		Phone:      p.Phone,
		City:       p.City,
	}
}

// PublicProjection 公开只读视图，隐藏联系方式和在世成员的出生日期
func PublicProjection(p *Person) PersonView {
	v := PersonView{
		ID:         p.ID,
		Name:       p.Name,
		Nickname:   p.Nickname,
		Sex:        p.Sex,
		Alive:      p.Alive,
		DeathDate:  p.DeathDate,
		Generation: p.Generation,
		Photo:      p.Photo,
	}
	if !p.Alive {
		v.BirthDate = p.BirthDate
	}
	return v
}
