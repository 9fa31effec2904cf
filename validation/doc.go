// Package validation checks workflow definitions, node configs and HTTP
// request bodies.
//
// Struct tags cover shape (required fields, ranges, enums) through
// go-playground/validator; the fluent Validator covers checks across fields
// such as duplicate node ids.
//
//	v := validation.New()
//	v.Unique("nodes", ids).Required("name", wf.Name)
//	err := v.Validate()
package validation
