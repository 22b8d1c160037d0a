package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"silsilah_go/internal/family"
)

// Bani 家族单元，一个 Bani 对应一棵家谱树
type Bani struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsPublic    bool           `gorm:"not null" json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Members []Person `gorm:"foreignKey:BaniID" json:"members,omitempty"`
}

// BeforeCreate 创建前生成 id
func (b *Bani) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TableName 指定表名
func (Bani) TableName() string {
	return "bani"
}

// Person 家族成员
type Person struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	BaniID     string         `gorm:"size:36;not null;index" json:"bani_id"`
	FullName   string         `gorm:"size:100;not null" json:"full_name"`
	Nickname   string         `gorm:"size:50" json:"nickname"`
	Gender     string         `gorm:"size:10;not null" json:"gender"`
	IsAlive    bool           `gorm:"not null" json:"is_alive"`
	BirthDate  *time.Time     `json:"birth_date,omitempty"`
	DeathDate  *time.Time     `json:"death_date,omitempty"`
	FatherID   *string        `gorm:"size:36;index" json:"father_id,omitempty"`
	MotherID   *string        `gorm:"size:36;index" json:"mother_id,omitempty"`
	Generation int            `gorm:"not null;default:0;index" json:"generation"`
	Photo      string         `gorm:"size:500" json:"photo"`
	Phone      string         `gorm:"size:30" json:"phone"`
	City       string         `gorm:"size:100" json:"city"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// 婚姻关系，两个方向分别存储
	MarriagesAsHusband []Marriage `gorm:"foreignKey:HusbandID" json:"marriages_as_husband,omitempty"`
	MarriagesAsWife    []Marriage `gorm:"foreignKey:WifeID" json:"marriages_as_wife,omitempty"`
}

// BeforeCreate 创建前生成 id
func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName 指定表名
func (Person) TableName() string {
	return "persons"
}

// Marriage 婚姻记录
type Marriage struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	HusbandID     string         `gorm:"size:36;not null;index;uniqueIndex:idx_marriage_pair" json:"husband_id"`
	WifeID        string         `gorm:"size:36;not null;index;uniqueIndex:idx_marriage_pair" json:"wife_id"`
	MarriageOrder int            `gorm:"not null;default:1" json:"marriage_order"`
	MarriageDate  *time.Time     `json:"marriage_date,omitempty"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate 创建前生成 id
func (m *Marriage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// TableName 指定表名
func (Marriage) TableName() string {
	return "marriages"
}

// ToFamily 转换为家谱算法使用的快照
func (p *Person) ToFamily() family.Person {
	fp := family.Person{
		ID:         p.ID,
		Name:       p.FullName,
		Nickname:   p.Nickname,
		Sex:        family.Sex(p.Gender),
		Alive:      p.IsAlive,
		BirthDate:  p.BirthDate,
		DeathDate:  p.DeathDate,
		Generation: p.Generation,
		Photo:      p.Photo,
		Phone:      p.Phone,
		City:       p.City,
	}
	if p.FatherID != nil {
		fp.FatherID = *p.FatherID
	}
	if p.MotherID != nil {
		fp.MotherID = *p.MotherID
	}
	for _, m := range p.MarriagesAsHusband {
		fp.Marriages = append(fp.Marriages, m.ToFamily())
	}
	for _, m := range p.MarriagesAsWife {
		fp.Marriages = append(fp.Marriages, m.ToFamily())
	}
	return fp
}

// ToFamily 转换为对称的婚姻记录
func (m *Marriage) ToFamily() family.Marriage {
	return family.Marriage{
		HusbandID: m.HusbandID,
		WifeID:    m.WifeID,
		Order:     m.MarriageOrder,
		Date:      m.MarriageDate,
		Active:    m.IsActive,
	}
}

// PersonFromFamily 由快照记录生成数据库模型，空的父母 id 存为 NULL
func PersonFromFamily(baniID string, p family.Person) Person {
	row := Person{
		ID:         p.ID,
		BaniID:     baniID,
		FullName:   p.Name,
		Nickname:   p.Nickname,
		Gender:     string(p.Sex),
		IsAlive:    p.Alive,
		BirthDate:  p.BirthDate,
		DeathDate:  p.DeathDate,
		Generation: p.Generation,
		Photo:      p.Photo,
		Phone:      p.Phone,
		City:       p.City,
	}
	if p.FatherID != "" {
		father := p.FatherID
		row.FatherID = &father
	}
	if p.MotherID != "" {
		mother := p.MotherID
		row.MotherID = &mother
	}
	return row
}

// MarriageFromFamily 由快照婚姻记录生成数据库模型
func MarriageFromFamily(m family.Marriage) Marriage {
	return Marriage{
		HusbandID:     m.HusbandID,
		WifeID:        m.WifeID,
		MarriageOrder: m.Order,
		MarriageDate:  m.Date,
		IsActive:      m.Active,
	}
}
