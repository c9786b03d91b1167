package models

// ============================================================
// BIM Elements
// ============================================================

// ElementData — один элемент сцены, как его отдает viewer.
type ElementData struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Mark       string         `json:"mark"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
	IsChild    bool           `json:"isChild"`
	Host       string         `json:"host,omitempty"`
}

// UncategorizedCategory подставляется элементам без категории.
const UncategorizedCategory = "Uncategorized"

// ============================================================
// Raw parameters
// ============================================================

// DefaultGroup — группа для ключей без namespace-префикса.
const DefaultGroup = "Parameters"

// SystemPrefix помечает зарезервированные движком ключи/группы.
const SystemPrefix = "__"

type ParameterGroup struct {
	FetchedGroup string `json:"fetchedGroup"`
	CurrentGroup string `json:"currentGroup"`
}

type RawMetadata struct {
	Category     string `json:"category"`
	ElementID    string `json:"elementId"`
	IsParent     bool   `json:"isParent"`
	IsSystem     bool   `json:"isSystem"`
	IsNested     bool   `json:"isNested,omitempty"`
	ParentKey    string `json:"parentKey,omitempty"`
	IsJSONString bool   `json:"isJsonString,omitempty"`
}

// RawParameter — одна извлеченная пара ключ/значение одного элемента.
// Создается заново на каждом проходе извлечения и не мутируется.
type RawParameter struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Value    any            `json:"value"`
	Group    ParameterGroup `json:"group"`
	Metadata RawMetadata    `json:"metadata"`
}

// ============================================================
// Parameter kinds & types
// ============================================================

type ParameterKind string

const (
	KindBIM  ParameterKind = "bim"
	KindUser ParameterKind = "user"
)

type ParameterType string

const (
	TypeString   ParameterType = "string"
	TypeNumber   ParameterType = "number"
	TypeBoolean  ParameterType = "boolean"
	TypeDate     ParameterType = "date"
	TypeObject   ParameterType = "object"
	TypeArray    ParameterType = "array"
	TypeEquation ParameterType = "equation"
	TypeFixed    ParameterType = "fixed"
)

// Equation — формула пользовательского параметра, ссылается на другие
// параметры по id.
type Equation struct {
	Expression string        `json:"expression"`
	References []string      `json:"references"`
	ResultType ParameterType `json:"resultType"`
}

// ============================================================
// Available parameters
// ============================================================

// AvailableParameter — дедуплицированный типизированный кандидат,
// который пользователь может добавить в таблицу. Tagged union: ветка
// выбирается по Kind, никогда по наличию полей.
type AvailableParameter struct {
	ID          string        `json:"id"`
	Kind        ParameterKind `json:"kind"`
	Name        string        `json:"name"`
	Type        ParameterType `json:"type"`
	Value       any           `json:"value"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description,omitempty"`
	Visible     bool          `json:"visible"`

	// kind == "bim"
	FetchedGroup string `json:"fetchedGroup,omitempty"`
	CurrentGroup string `json:"currentGroup,omitempty"`
	IsSystem     bool   `json:"isSystem,omitempty"`

	// kind == "user"
	Group    string    `json:"group,omitempty"`
	Equation *Equation `json:"equation,omitempty"`

	Metadata *RawMetadata `json:"metadata,omitempty"`
}

// DisplayGroup возвращает группу для сортировки/отображения.
func (p AvailableParameter) DisplayGroup() string {
	if p.Kind == KindUser {
		if p.Group != "" {
			return p.Group
		}
		return DefaultGroup
	}
	if p.CurrentGroup != "" {
		return p.CurrentGroup
	}
	return p.FetchedGroup
}

// ============================================================
// Selected parameters & columns
// ============================================================

// SelectedParameter — выбранный параметр с порядком и видимостью.
// Инвариант: Order внутри одного scope плотный, с нуля, без дыр.
type SelectedParameter struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Kind        ParameterKind `json:"kind"`
	Type        ParameterType `json:"type"`
	Value       any           `json:"value,omitempty"`
	Group       string        `json:"group"`
	Visible     bool          `json:"visible"`
	Order       int           `json:"order"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description,omitempty"`
}

// TableColumn — SelectedParameter плюс табличные поля.
// Инвариант: fixed-колонки (Removable=false) всегда идут раньше
// остальных независимо от Order.
type TableColumn struct {
	SelectedParameter
	Field      string `json:"field"`
	Header     string `json:"header"`
	Width      int    `json:"width,omitempty"`
	Sortable   bool   `json:"sortable"`
	Filterable bool   `json:"filterable"`
	Removable  bool   `json:"removable"`
	IsFixed    bool   `json:"isFixed"`
}

// ============================================================
// Named table configs
// ============================================================

type CategoryFilters struct {
	SelectedParentCategories []string `json:"selectedParentCategories"`
	SelectedChildCategories  []string `json:"selectedChildCategories"`
}

// NamedTableConfig — сохраненная конфигурация таблицы. Это de facto
// схема персистентности: имена и вложенность полей должны сохраняться
// байт-в-байт для совместимости со старыми сохранениями.
type NamedTableConfig struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	DisplayName         string          `json:"displayName"`
	ParentColumns       []TableColumn   `json:"parentColumns"`
	ChildColumns        []TableColumn   `json:"childColumns"`
	CategoryFilters     CategoryFilters `json:"categoryFilters"`
	LastUpdateTimestamp int64           `json:"lastUpdateTimestamp"`
}
