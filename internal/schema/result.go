package schema

import "sort"

// FieldErrors 字段路径 -> 面向用户的错误信息
type FieldErrors map[string]string

// Paths 按字母序返回出错字段
func (e FieldErrors) Paths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Result 校验结果，二选一：Ok(value) 或 Err(fieldErrors)
type Result[T any] struct {
	value T
	errs  FieldErrors
}

// Ok 构造成功结果
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err 构造失败结果
func Err[T any](errs FieldErrors) Result[T] {
	return Result[T]{errs: errs}
}

// OK 是否校验通过
func (r Result[T]) OK() bool {
	return len(r.errs) == 0
}

// Value 校验通过后的类型化值；失败时为零值
func (r Result[T]) Value() T {
	return r.value
}

// Errors 失败时的字段错误；成功时为 nil
func (r Result[T]) Errors() FieldErrors {
	return r.errs
}
