package interview

// Slot is one required fact the interview must collect.
type Slot struct {
	Name string `json:"name" yaml:"name"`
	Hint string `json:"hint" yaml:"hint"`
	// FillOnAnswer marks a slot as answered by whatever the user says while it
	// is the first missing one. This is the fixed-questionnaire mode; slots
	// without it rely on the completion service's judgement.
	FillOnAnswer bool `json:"fillOnAnswer,omitempty" yaml:"fill_on_answer"`
}

// Schema is the fixed, ordered set of slots for one interview definition.
// Keys never change for the lifetime of a session.
type Schema []Slot

// InitialSlots returns a fresh fulfilment map with every slot unfulfilled.
func (s Schema) InitialSlots() map[string]bool {
	slots := make(map[string]bool, len(s))
	for _, slot := range s {
		slots[slot.Name] = false
	}
	return slots
}

// AllFulfilled reports whether every slot has been collected.
func (s Schema) AllFulfilled(slots map[string]bool) bool {
	for _, slot := range s {
		if !slots[slot.Name] {
			return false
		}
	}
	return true
}

// Missing returns the unfulfilled slots in schema order.
func (s Schema) Missing(slots map[string]bool) []Slot {
	var missing []Slot
	for _, slot := range s {
		if !slots[slot.Name] {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Has reports whether the schema defines a slot with the given name.
func (s Schema) Has(name string) bool {
	for _, slot := range s {
		if slot.Name == name {
			return true
		}
	}
	return false
}
