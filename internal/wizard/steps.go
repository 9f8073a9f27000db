package wizard

import "trendies_market_v1/internal/schema"

// Step 向导步骤及其负责校验的字段
type Step struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// Steps 固定五步；离开某一步时只校验该步字段
// 所有必填字段都必须归属某一步，否则错误只能在最终提交时暴露
var Steps = []Step{
	{
		Number: 1,
		Name:   "Details",
		Fields: append([]string{
			schema.FieldTitle,
			schema.FieldCategory,
			schema.FieldBrand,
			schema.FieldCondition,
			schema.FieldTargetAudience,
			schema.FieldDescription,
			schema.FieldSizeDimensions,
			schema.FieldCollection,
			schema.FieldMaterial,
			schema.FieldColor,
		}, photoFields()...),
	},
	{Number: 2, Name: "Pricing", Fields: []string{schema.FieldPrice, schema.FieldBuyNowPrice}},
	{Number: 3, Name: "Documents"},
	{Number: 4, Name: "Availability"},
	{Number: 5, Name: "Review"},
}

// FirstStep 起始步骤
const FirstStep = 1

// LastStep 最后一步（Review），只能从这里提交
var LastStep = len(Steps)

func photoFields() []string {
	fields := make([]string, 0, len(schema.PhotoSlots))
	for _, slot := range schema.PhotoSlots {
		fields = append(fields, schema.PhotoField(slot))
	}
	return fields
}

// StepFields 某一步负责的字段
func StepFields(step int) []string {
	if step < FirstStep || step > LastStep {
		return nil
	}
	return Steps[step-1].Fields
}

// StepName 步骤名称
func StepName(step int) string {
	if step < FirstStep || step > LastStep {
		return ""
	}
	return Steps[step-1].Name
}

// StepOf 字段所属步骤，未归属返回 0
func StepOf(field string) int {
	for _, s := range Steps {
		for _, f := range s.Fields {
			if f == field {
				return s.Number
			}
		}
	}
	return 0
}
