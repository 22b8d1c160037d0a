package family

import "fmt"

// WarningKind 数据诊断类型
type WarningKind string

const (
	WarnCycle           WarningKind = "cycle"            // 父子关系成环
	WarnRootNotFound    WarningKind = "root_not_found"   // 指定的根节点不在成员列表中
	WarnDanglingParent  WarningKind = "dangling_parent"  // 父母 id 指向列表外的成员
	WarnDuplicateID     WarningKind = "duplicate_id"     // 重复的成员 id
	WarnGeneration      WarningKind = "generation"       // 代数与父母不一致
	WarnMarriageRole    WarningKind = "marriage_role"    // 婚姻角色与性别不符
	WarnUnknownSpouse   WarningKind = "unknown_spouse"   // 婚姻记录引用列表外的成员
	WarnDepthTruncated  WarningKind = "depth_truncated"  // 超过代数上限被截断
	WarnMalformedRecord WarningKind = "malformed_record" // 记录未通过字段校验，已忽略
)

// Warning 数据异常诊断，不影响构建结果
type Warning struct {
	Kind      WarningKind `json:"kind"`
	PersonID  string      `json:"person_id"`
	RelatedID string      `json:"related_id,omitempty"`
	Detail    string      `json:"detail"`
}

func (w Warning) String() string {
	if w.RelatedID != "" {
		return fmt.Sprintf("%s: %s (%s) %s", w.Kind, w.PersonID, w.RelatedID, w.Detail)
	}
	return fmt.Sprintf("%s: %s %s", w.Kind, w.PersonID, w.Detail)
}
