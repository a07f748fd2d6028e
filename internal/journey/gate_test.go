package journey

import "testing"

func TestAccessible(t *testing.T) {
	current := func(v int) *int { return &v }

	cases := []struct {
		name    string
		target  int
		current *int
		want    bool
	}{
		{"equal", 3, current(3), true},
		{"behind", 1, current(3), true},
		{"ahead", 4, current(3), false},
		{"first step at start", 0, current(0), true},
		{"last step locked", FinalStep, current(0), false},
		{"progress not loaded", 7, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Accessible(tc.target, tc.current); got != tc.want {
				t.Fatalf("Accessible(%d, %v) = %v, want %v", tc.target, tc.current, got, tc.want)
			}
		})
	}
}
