package models

// ============================================================
// Factories
// ============================================================

// Правила дефолтов здесь поведенческие: от них зависит группировка и
// категоризация, менять нельзя.
const fallbackFetchedGroup = "Default"

// NewAvailableBimParameter создает bim-параметр с дефолтами:
// fetchedGroup -> "Default", currentGroup -> fetchedGroup, visible -> true.
func NewAvailableBimParameter(id, name string, paramType ParameterType, value any) AvailableParameter {
	return applyBimDefaults(AvailableParameter{
		ID:    id,
		Kind:  KindBIM,
		Name:  name,
		Type:  paramType,
		Value: value,
	})
}

func applyBimDefaults(p AvailableParameter) AvailableParameter {
	p.Kind = KindBIM
	if p.FetchedGroup == "" {
		p.FetchedGroup = fallbackFetchedGroup
	}
	if p.CurrentGroup == "" {
		p.CurrentGroup = p.FetchedGroup
	}
	p.Visible = true
	return p
}

// FromRaw оборачивает дедуплицированный RawParameter в AvailableParameter.
// kind выбирается каскадом происхождения (см. dedup), тип — выводом типа.
func FromRaw(raw RawParameter, kind ParameterKind, paramType ParameterType) AvailableParameter {
	meta := raw.Metadata
	p := AvailableParameter{
		ID:       raw.ID,
		Kind:     kind,
		Name:     raw.Name,
		Type:     paramType,
		Value:    raw.Value,
		Category: meta.Category,
		Metadata: &meta,
	}
	if kind == KindUser {
		p.Group = raw.Group.CurrentGroup
		p.Visible = true
		return p
	}
	p.FetchedGroup = raw.Group.FetchedGroup
	p.CurrentGroup = raw.Group.CurrentGroup
	p.IsSystem = meta.IsSystem
	return applyBimDefaults(p)
}

// NewAvailableUserParameter создает пользовательский параметр.
// Тип фиксированного значения — "fixed", у формулы — "equation".
func NewAvailableUserParameter(id, name, group string, value any, eq *Equation) AvailableParameter {
	paramType := TypeFixed
	if eq != nil {
		paramType = TypeEquation
	}
	if group == "" {
		group = DefaultGroup
	}
	return AvailableParameter{
		ID:       id,
		Kind:     KindUser,
		Name:     name,
		Type:     paramType,
		Value:    value,
		Group:    group,
		Equation: eq,
		Visible:  true,
	}
}

// ToSelected проецирует available-параметр в selected с заданным порядком.
func (p AvailableParameter) ToSelected(order int) SelectedParameter {
	return SelectedParameter{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        p.Kind,
		Type:        p.Type,
		Value:       p.Value,
		Group:       p.DisplayGroup(),
		Visible:     p.Visible,
		Order:       order,
		Category:    p.Category,
		Description: p.Description,
	}
}
