package format

import "testing"

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "zero", in: 0, want: "0 B"},
		{name: "bytes", in: 512, want: "512 B"},
		{name: "kilobytes", in: 1536, want: "1.5 KB"},
		{name: "megabytes", in: 10 * 1024 * 1024, want: "10.0 MB"},
		{name: "gigabytes", in: 3 * 1024 * 1024 * 1024, want: "3.0 GB"},
		{name: "just under a unit", in: 1023, want: "1023 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeBytes(tt.in); got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
