package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"silsilah_go/internal/family"
)

// Validator 数据验证服务
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器实例
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里使用 json/mapstructure 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// Struct 按 validate 标签校验结构体
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return fmt.Errorf("validation errors: %s", strings.Join(describe(verrs), "; "))
}

// Persons 校验成员快照，任何一条记录出错都返回错误
func (v *Validator) Persons(persons []family.Person) error {
	var problems []string
	for i := range persons {
		for _, msg := range v.person(&persons[i]) {
			problems = append(problems, fmt.Sprintf("person %q: %s", persons[i].ID, msg))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return NewError(ErrInvalidInput, "invalid person records", errors.New(strings.Join(problems, "; "))).
		WithContext("count", len(problems))
}

// Valid 去掉未通过校验的记录，每条被去掉的记录给出一条 WarnMalformedRecord
func (v *Validator) Valid(persons []family.Person) ([]family.Person, []family.Warning) {
	kept := make([]family.Person, 0, len(persons))
	var warnings []family.Warning
	for i := range persons {
		problems := v.person(&persons[i])
		if len(problems) == 0 {
			kept = append(kept, persons[i])
			continue
		}
		warnings = append(warnings, family.Warning{
			Kind:     family.WarnMalformedRecord,
			PersonID: persons[i].ID,
			Detail:   strings.Join(problems, "; "),
		})
	}
	return kept, warnings
}

func (v *Validator) person(p *family.Person) []string {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	return describe(verrs)
}

func describe(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return msgs
}
