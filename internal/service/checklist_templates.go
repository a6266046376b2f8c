package service

import "boothdesk/internal/model"

// ChecklistTemplate is a built-in starter checklist for a kind of booth.
type ChecklistTemplate struct {
	Key   string                `json:"key"`
	Name  string                `json:"name"`
	Items []model.ChecklistSeed `json:"items"`
}

func seeds(phase model.Phase, texts ...string) []model.ChecklistSeed {
	out := make([]model.ChecklistSeed, len(texts))
	for i, t := range texts {
		out[i] = model.ChecklistSeed{Phase: phase, Text: t}
	}
	return out
}

func newTemplate(key, name string, groups ...[]model.ChecklistSeed) ChecklistTemplate {
	t := ChecklistTemplate{Key: key, Name: name}
	for _, g := range groups {
		t.Items = append(t.Items, g...)
	}
	return t
}

var checklistTemplates = []ChecklistTemplate{
	newTemplate("photo_booth", "Photo booth",
		seeds(model.PhasePre,
			"Confirm venue, arrival time and power outlet",
			"Charge camera batteries and format memory cards",
			"Load printer paper and ribbon",
			"Pack backdrop, props and signage",
			"Customize print layout with the client's branding",
		),
		seeds(model.PhaseDuring,
			"Set up booth and run a test print",
			"Check lighting and camera framing",
			"Restock props and paper",
		),
		seeds(model.PhasePost,
			"Pack equipment and check for damage",
			"Upload the online gallery",
			"Send thank-you message and ask for a review",
		),
	),
	newTemplate("mirror_booth", "Mirror booth",
		seeds(model.PhasePre,
			"Confirm venue access and door width for the mirror",
			"Update the mirror touch animations",
			"Test the touchscreen calibration",
			"Pack the stanchions and red carpet",
		),
		seeds(model.PhaseDuring,
			"Assemble mirror and level it",
			"Run calibration and a test session",
			"Keep the mirror surface clean",
		),
		seeds(model.PhasePost,
			"Disassemble and protect the mirror glass",
			"Deliver the photo gallery to the client",
			"Send thank-you message and ask for a review",
		),
	),
	newTemplate("totem", "Totem",
		seeds(model.PhasePre,
			"Confirm venue and network connectivity",
			"Update the totem software",
			"Prepare the sharing QR code",
		),
		seeds(model.PhaseDuring,
			"Install totem and test the sharing flow",
			"Monitor the queue and guest sharing",
		),
		seeds(model.PhasePost,
			"Collect the totem and export the session data",
			"Send the sharing report to the client",
		),
	),
}

// ChecklistTemplates returns the built-in templates.
func ChecklistTemplates() []ChecklistTemplate {
	return checklistTemplates
}

func findTemplate(key string) (ChecklistTemplate, bool) {
	for _, t := range checklistTemplates {
		if t.Key == key {
			return t, true
		}
	}
	return ChecklistTemplate{}, false
}
