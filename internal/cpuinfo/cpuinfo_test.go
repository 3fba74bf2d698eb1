package cpuinfo

import (
	"runtime"
	"testing"
)

func TestNoSIMD(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{val: "", want: false},
		{val: "0", want: false},
		{val: "false", want: false},
		{val: "1", want: true},
		{val: "true", want: true},
		{val: "yes", want: true},
	}
	for _, tt := range tests {
		t.Setenv(EnvNoSIMD, tt.val)
		if got := NoSIMD(); got != tt.want {
			t.Fatalf("NoSIMD() with %q = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvNoSIMD, "1")
	f := Detect()
	if f.GOARCH != runtime.GOARCH || f.GOOS != runtime.GOOS {
		t.Fatalf("unexpected platform %s/%s", f.GOOS, f.GOARCH)
	}
	if f.CPUs < 1 {
		t.Fatalf("expected at least one cpu, got %d", f.CPUs)
	}
	if !f.NoSIMD {
		t.Fatal("expected NoSIMD to follow the environment")
	}
	if runtime.GOARCH == "amd64" && !f.Has("SSE2") {
		t.Fatal("SSE2 is baseline on amd64")
	}
}
