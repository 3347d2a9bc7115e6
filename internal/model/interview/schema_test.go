package interview

import "testing"

func testSchema() Schema {
	return Schema{
		{Name: "name", Hint: "the person's name"},
		{Name: "email", Hint: "a contact email address"},
		{Name: "timeline", Hint: "the project timeframe"},
	}
}

func TestInitialSlotsAllFalse(t *testing.T) {
	slots := testSchema().InitialSlots()
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for name, fulfilled := range slots {
		if fulfilled {
			t.Fatalf("slot %q should start unfulfilled", name)
		}
	}
}

func TestMissingPreservesSchemaOrder(t *testing.T) {
	schema := testSchema()
	slots := schema.InitialSlots()
	slots["email"] = true

	missing := schema.Missing(slots)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing slots, got %d", len(missing))
	}
	if missing[0].Name != "name" || missing[1].Name != "timeline" {
		t.Fatalf("missing slots out of schema order: %v", missing)
	}
}

func TestAllFulfilled(t *testing.T) {
	schema := testSchema()
	slots := schema.InitialSlots()
	if schema.AllFulfilled(slots) {
		t.Fatal("fresh slots must not be fulfilled")
	}
	for name := range slots {
		slots[name] = true
	}
	if !schema.AllFulfilled(slots) {
		t.Fatal("expected all slots fulfilled")
	}
}

func TestAllFulfilledEmptySchema(t *testing.T) {
	var schema Schema
	if !schema.AllFulfilled(map[string]bool{}) {
		t.Fatal("zero-slot schema is trivially fulfilled")
	}
}

func TestDefaultDefinitionValid(t *testing.T) {
	def := Default()
	if err := def.Validate(); err != nil {
		t.Fatalf("default definition invalid: %v", err)
	}
	if def.OpeningQuestion != "What can I help you ship?" {
		t.Fatalf("unexpected opening question: %q", def.OpeningQuestion)
	}
}

func TestValidateRejectsDuplicateSlots(t *testing.T) {
	def := Definition{
		Name:            "broken",
		OpeningQuestion: "Hi?",
		Slots:           Schema{{Name: "email"}, {Name: "email"}},
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected duplicate slot error")
	}
}
