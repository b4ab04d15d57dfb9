package domain

import "testing"

func TestOverlayProfile(t *testing.T) {
	current := ProfileDetails{Bio: "b", Phone: "p", Location: "l"}
	s := func(v string) *string { return &v }

	tests := []struct {
		name    string
		overlay ProfileOverlay
		want    ProfileDetails
	}{
		{"empty overlay", ProfileOverlay{}, current},
		{"bio only", ProfileOverlay{Bio: s("B")}, ProfileDetails{Bio: "B", Phone: "p", Location: "l"}},
		{"clear phone", ProfileOverlay{Phone: s("")}, ProfileDetails{Bio: "b", Phone: "", Location: "l"}},
		{"all", ProfileOverlay{Bio: s("1"), Phone: s("2"), Location: s("3")}, ProfileDetails{Bio: "1", Phone: "2", Location: "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlayProfile(current, tt.overlay); got != tt.want {
				t.Fatalf("OverlayProfile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
