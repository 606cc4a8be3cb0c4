package transport

import "testing"

func TestParseKernelVersion(t *testing.T) {
	cases := []struct {
		release string
		want    KernelVersion
	}{
		{"6.8.0-45-generic", KernelVersion{6, 8}},
		{"5.10.102.1-microsoft-standard-WSL2", KernelVersion{5, 10}},
		{"5.1", KernelVersion{5, 1}},
		{"4.19.0+", KernelVersion{4, 19}},
	}
	for _, tc := range cases {
		got, err := ParseKernelVersion(tc.release)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.release, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %s want %s", tc.release, got, tc.want)
		}
	}
	for _, bad := range []string{"", "6", "generic", "6.x"} {
		if _, err := ParseKernelVersion(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestKernelVersion_AtLeast(t *testing.T) {
	if !(KernelVersion{5, 1}).AtLeast(ioUringMinKernel) {
		t.Fatalf("expected 5.1 to satisfy io_uring minimum")
	}
	if (KernelVersion{4, 19}).AtLeast(ioUringMinKernel) {
		t.Fatalf("expected 4.19 to be too old")
	}
	if !(KernelVersion{6, 0}).AtLeast(KernelVersion{5, 19}) {
		t.Fatalf("expected major to dominate")
	}
}
