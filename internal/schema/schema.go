package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Input 候选载荷：字段路径 -> 原始值
// 来源可以是 JSON 解码结果，也可以是向导草稿快照
type Input map[string]any

// Clone 浅拷贝
func (in Input) Clone() Input {
	out := make(Input, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Kind 字段值类型
type Kind int

const (
	KindString Kind = iota
	KindEnum
	KindNumber
	KindFile
)

// Rule 单条规则：validator 标签或自定义断言，二者取其一
type Rule struct {
	Tag     string
	Check   func(v any) bool
	Message string
}

// Field 字段定义，Rules 按顺序执行，第一条失败的规则给出错误信息
type Field struct {
	Path            string
	Kind            Kind
	Required        bool
	RequiredMessage string
	Rules           []Rule
}

// Schema 声明式校验器
type Schema struct {
	fields   []Field
	index    map[string]int
	validate *validator.Validate
}

// New 创建 Schema，字段顺序即错误收集顺序
func New(v *validator.Validate, fields ...Field) *Schema {
	s := &Schema{
		fields:   fields,
		index:    make(map[string]int, len(fields)),
		validate: v,
	}
	for i, f := range fields {
		s.index[f.Path] = i
	}
	return s
}

// Fields 全部字段路径
func (s *Schema) Fields() []string {
	paths := make([]string, len(s.fields))
	for i, f := range s.fields {
		paths[i] = f.Path
	}
	return paths
}

// RequiredFields 必填字段路径
func (s *Schema) RequiredFields() []string {
	var paths []string
	for _, f := range s.fields {
		if f.Required {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Parse 校验指定字段（为空时校验全部），返回强转后的值与字段错误
// 缺省的可选字段不会出现在 values 中
func (s *Schema) Parse(in Input, paths ...string) (map[string]any, FieldErrors) {
	in = Normalize(in)

	targets := s.fields
	errs := FieldErrors{}
	if len(paths) > 0 {
		targets = make([]Field, 0, len(paths))
		for _, p := range paths {
			i, ok := s.index[p]
			if !ok {
				errs[p] = "Unknown field."
				continue
			}
			targets = append(targets, s.fields[i])
		}
	}

	values := make(map[string]any, len(targets))
	for _, f := range targets {
		v, present, msg := s.coerce(f, in[f.Path])
		if msg != "" {
			errs[f.Path] = msg
			continue
		}
		if !present {
			if f.Required {
				errs[f.Path] = f.RequiredMessage
			}
			continue
		}
		if msg := s.runRules(f, v); msg != "" {
			errs[f.Path] = msg
			continue
		}
		values[f.Path] = v
	}

	if len(errs) == 0 {
		return values, nil
	}
	return values, errs
}

func (s *Schema) runRules(f Field, v any) string {
	for _, r := range f.Rules {
		if r.Check != nil {
			if !r.Check(v) {
				return r.Message
			}
			continue
		}
		if err := s.validate.Var(v, r.Tag); err != nil {
			return r.Message
		}
	}
	return ""
}

// coerce 把原始值转换为字段类型
// 返回 (值, 是否存在, 类型错误信息)
func (s *Schema) coerce(f Field, raw any) (any, bool, string) {
	switch f.Kind {
	case KindString:
		if raw == nil {
			return nil, false, ""
		}
		str, ok := raw.(string)
		if !ok {
			return nil, false, fmt.Sprintf("Expected string, received %T.", raw)
		}
		// 必填字段的空串交给规则判断；可选字段的空串视为缺省
		if str == "" && !f.Required {
			return nil, false, ""
		}
		return str, true, ""

	case KindEnum:
		if raw == nil {
			return nil, false, ""
		}
		str, ok := raw.(string)
		if !ok {
			return nil, false, fmt.Sprintf("Expected string, received %T.", raw)
		}
		if str == "" {
			return nil, false, ""
		}
		return str, true, ""

	case KindNumber:
		if raw == nil {
			return nil, false, ""
		}
		if str, ok := raw.(string); ok {
			str = strings.TrimSpace(str)
			if str == "" {
				return nil, false, ""
			}
			raw = str
		}
		n, err := cast.ToFloat64E(raw)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false, fmt.Sprintf("Expected number, received %v.", raw)
		}
		return n, true, ""

	case KindFile:
		file, ok := asFile(raw)
		if !ok {
			return nil, false, "Expected a file."
		}
		if file == nil {
			return nil, false, ""
		}
		return file, true, ""
	}
	return nil, false, "Unsupported field."
}

// Normalize 展开嵌套的 photos 对象为 "photos.<slot>" 路径
func Normalize(in Input) Input {
	nested, ok := in["photos"].(map[string]any)
	if !ok {
		return in
	}
	out := in.Clone()
	delete(out, "photos")
	for slot, v := range nested {
		key := "photos." + slot
		if _, exists := out[key]; !exists {
			out[key] = v
		}
	}
	return out
}

// OneOf 注册到 validator 的枚举校验
func OneOf(set []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
}
