package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"silsilah_go/internal/family"
	"silsilah_go/internal/model"
)

// PersonRepository 成员数据访问
type PersonRepository struct {
	db *gorm.DB
}

// NewPersonRepository 创建成员仓储实例
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db.DB}
}

// GetBani 按 id 获取家族
func (r *PersonRepository) GetBani(ctx context.Context, baniID string) (*model.Bani, error) {
	var bani model.Bani
	if err := r.db.WithContext(ctx).First(&bani, "id = ?", baniID).Error; err != nil {
		return nil, err
	}
	return &bani, nil
}

// ListBani 列出全部家族
func (r *PersonRepository) ListBani(ctx context.Context) ([]model.Bani, error) {
	var list []model.Bani
	err := r.db.WithContext(ctx).Order("name, id").Find(&list).Error
	return list, err
}

// ListByBani 获取家族全部成员，婚姻关系两个方向都会带出
func (r *PersonRepository) ListByBani(ctx context.Context, baniID string) ([]family.Person, error) {
	var rows []model.Person
	err := r.db.WithContext(ctx).
		Preload("MarriagesAsHusband").
		Preload("MarriagesAsWife").
		Where("bani_id = ?", baniID).
		Order("generation, created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	persons := make([]family.Person, 0, len(rows))
	for i := range rows {
		persons = append(persons, rows[i].ToFamily())
	}
	return persons, nil
}

// Import 在一个事务里写入家族及其成员和婚姻
//
// 快照里的 id 只在快照内有效，写入时全部换成新的 uuid，父母和婚姻引用随之改写。
// 指向快照外成员的父母引用存为 NULL，引用快照外成员的婚姻不写入。
func (r *PersonRepository) Import(ctx context.Context, bani *model.Bani, persons []family.Person) error {
	ids := make(map[string]string, len(persons))
	rows := make([]model.Person, 0, len(persons))
	for _, p := range persons {
		if _, dup := ids[p.ID]; dup {
			continue
		}
		ids[p.ID] = uuid.NewString()
	}
	seen := make(map[string]bool, len(persons))
	for _, p := range persons {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		p.ID = ids[p.ID]
		p.FatherID = ids[p.FatherID]
		p.MotherID = ids[p.MotherID]
		rows = append(rows, model.PersonFromFamily("", p))
	}

	var mrows []model.Marriage
	for _, m := range family.CollectMarriages(persons) {
		husband, okH := ids[m.HusbandID]
		wife, okW := ids[m.WifeID]
		if !okH || !okW {
			continue
		}
		m.HusbandID, m.WifeID = husband, wife
		mrows = append(mrows, model.MarriageFromFamily(m))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bani).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			for i := range rows {
				rows[i].BaniID = bani.ID
			}
			if err := tx.Omit("MarriagesAsHusband", "MarriagesAsWife").Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(mrows) == 0 {
			return nil
		}
		return tx.Create(&mrows).Error
	})
}
