package wizard

import "sort"

// applyOrder fixes the application order for batch edits. The
// classification fields cascade parent-first (a category change resets the
// property type, a type change resets the transaction), and the derived
// price engine reads area, so these must land before anything else in the
// same batch; a request map carries no order of its own.
var applyOrder = []string{
	"user_type", "property_category", "property_type", "transaction_type",
	"area", "area_unit", "price_per_unit", "total_price",
}

type fieldEdit struct {
	name  string
	value any
}

func orderedEdits(fields map[string]any) []fieldEdit {
	rank := make(map[string]int, len(applyOrder))
	for i, name := range applyOrder {
		rank[name] = i
	}

	edits := make([]fieldEdit, 0, len(fields))
	for name, value := range fields {
		edits = append(edits, fieldEdit{name: name, value: value})
	}
	sort.Slice(edits, func(i, j int) bool {
		ri, iRanked := rank[edits[i].name]
		rj, jRanked := rank[edits[j].name]
		if iRanked != jRanked {
			return iRanked
		}
		if iRanked && ri != rj {
			return ri < rj
		}
		return edits[i].name < edits[j].name
	})
	return edits
}

// SetFields applies a batch of edits in dependency order so a cascading
// reset cannot wipe a sibling value arriving in the same request.
func (w *Wizard) SetFields(fields map[string]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWizardClosed
	}
	for _, edit := range orderedEdits(fields) {
		if err := w.draft.Set(edit.name, edit.value); err != nil {
			return err
		}
	}
	return nil
}
