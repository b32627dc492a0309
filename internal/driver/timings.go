package driver

import (
	"encoding/json"
	"fmt"

	"logport/internal/diag"
	"logport/internal/observ"
	"logport/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Files   int                  `json:"files"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds an info diagnostic carrying the run's phase timings as a
// JSON note, for machine-readable output. It points at a virtual "<timings>"
// file so it does not borrow a location from a real source.
func (r *Report) AppendTimings(bag *diag.Bag) {
	if r == nil || r.Timer == nil || bag == nil {
		return
	}
	rep := r.Timer.Report()
	payload := timingPayload{
		Kind:    "run",
		Files:   len(r.Files),
		TotalMS: rep.TotalMS,
		Phases:  rep.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	id := r.FileSet.AddVirtual("<timings>", nil)
	entry := &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS),
		Primary:  source.Span{File: id},
		Notes: []diag.Note{
			{Span: source.Span{File: id}, Msg: string(data)},
		},
	}

	if bag.Add(entry) {
		return
	}
	// мешок заполнен: тайминги важнее лимита
	overflow := diag.NewBag(len(bag.Items()) + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
