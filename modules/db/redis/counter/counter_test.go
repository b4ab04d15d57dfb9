package counter

import "testing"

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "rl:1.2.3.4:7"},
		{"prod", "prod:rl:1.2.3.4:7"},
		{"prod:", "prod:rl:1.2.3.4:7"},
	}
	for _, tt := range tests {
		if got := NewRedisCounter(nil, tt.prefix).key("rl:1.2.3.4:7"); got != tt.want {
			t.Errorf("prefix %q: key = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}
