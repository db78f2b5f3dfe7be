package twbedit

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/javajack/twbedit/calc"
	"github.com/javajack/twbedit/component"
)

// FieldInfo summarizes one field of a datasource. References lists the
// distinct bracketed references in Formula.
type FieldInfo struct {
	Name       string   `json:"name"`
	Caption    string   `json:"caption"`
	DataType   string   `json:"datatype,omitempty"`
	Role       string   `json:"role,omitempty"`
	Formula    string   `json:"formula,omitempty"`
	References []string `json:"references,omitempty"`
}

// Calculated reports whether the field carries a formula.
func (f FieldInfo) Calculated() bool { return f.Formula != "" }

// fieldEnv is the environment a SelectFields condition sees.
type fieldEnv struct {
	Name       string   `expr:"name"`
	Caption    string   `expr:"caption"`
	DataType   string   `expr:"datatype"`
	Role       string   `expr:"role"`
	Formula    string   `expr:"formula"`
	Calculated bool     `expr:"calculated"`
	References []string `expr:"references"`
}

var conditions sync.Map // condition string → compiled *vm.Program

// ListFields returns the fields of a datasource in document order. A field
// without a caption is shown by its bare name.
func (wb *Workbook) ListFields(datasource string) ([]FieldInfo, error) {
	ds, err := wb.datasource(datasource)
	if err != nil {
		return nil, err
	}
	var out []FieldInfo
	for _, col := range component.Columns(ds) {
		name := col.SelectAttrValue("name", "")
		caption := col.SelectAttrValue("caption", "")
		if caption == "" {
			caption = calc.Unbracket(name)
		}
		formula, _ := component.Formula(col)
		out = append(out, FieldInfo{
			Name:       name,
			Caption:    caption,
			DataType:   col.SelectAttrValue("datatype", ""),
			Role:       col.SelectAttrValue("role", ""),
			Formula:    formula,
			References: calc.References(formula),
		})
	}
	return out, nil
}

// SelectFields returns the fields of a datasource for which condition is
// true. The condition is an expr expression over name, caption, datatype,
// role, formula, calculated and references, e.g.
// `calculated && "[Sales]" in references`.
func (wb *Workbook) SelectFields(datasource, condition string) ([]FieldInfo, error) {
	program, err := compileCondition(condition)
	if err != nil {
		return nil, err
	}
	fields, err := wb.ListFields(datasource)
	if err != nil {
		return nil, err
	}
	var out []FieldInfo
	for _, f := range fields {
		env := fieldEnv{
			Name:       f.Name,
			Caption:    f.Caption,
			DataType:   f.DataType,
			Role:       f.Role,
			Formula:    f.Formula,
			Calculated: f.Calculated(),
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate condition %q: %w", condition, err)
		}
		if ok, _ := result.(bool); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func compileCondition(condition string) (*vm.Program, error) {
	if cached, ok := conditions.Load(condition); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.Env(fieldEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", condition, err)
	}
	conditions.Store(condition, program)
	return program, nil
}
