package dto

type ChecklistItemCreateDTO struct {
	Phase string `json:"phase" validate:"required"`
	Text  string `json:"text" validate:"required,max=500"`
}

// ChecklistItemUpdateDTO edits text and/or completion. Position is changed only through reorder.
type ChecklistItemUpdateDTO struct {
	Text      *string `json:"text" validate:"omitempty,max=500"`
	Completed *bool   `json:"completed"`
}

type ChecklistReorderDTO struct {
	Phase string   `json:"phase" validate:"required"`
	IDs   []string `json:"ids" validate:"required,dive,uuid"`
}

type ChecklistCopyDTO struct {
	SourceEventID string `json:"source_event_id" validate:"required,uuid"`
	Replace       bool   `json:"replace"`
}

type ChecklistTemplateDTO struct {
	Template string `json:"template" validate:"required"`
	Replace  bool   `json:"replace"`
}

type ChecklistSeedDTO struct {
	Phase string `json:"phase" validate:"required"`
	Text  string `json:"text" validate:"required,max=500"`
}

type ChecklistBulkDTO struct {
	Items   []ChecklistSeedDTO `json:"items" validate:"required,min=1,max=100,dive"`
	Replace bool               `json:"replace"`
}
