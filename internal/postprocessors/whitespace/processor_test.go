package whitespace

import (
	"context"
	"testing"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "whitespace" {
		t.Errorf("expected name 'whitespace', got %q", New().Name())
	}
}

func TestProcessor_Process(t *testing.T) {
	in := []domain.ParagraphUnit{
		{Index: 2, Text: "  O   Son of\tMan!  "},
		{Index: 5, Text: "line one  \r\n   line two"},
		{Index: 7, Text: " \t "},
	}

	got, err := New().Process(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.ParagraphUnit{
		{Index: 2, Text: "O Son of Man!"},
		{Index: 5, Text: "line one\nline two"},
		{Index: 7, Text: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if in[0].Text != "  O   Son of\tMan!  " {
		t.Error("input units should not be modified")
	}
}
