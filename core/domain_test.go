package core

import "testing"

func TestPlatform_Matches(t *testing.T) {
	cases := []struct {
		tag    Platform
		target Platform
		want   bool
	}{
		{Platform{OS: "linux", Arch: "amd64"}, Platform{OS: "linux", Arch: "amd64"}, true},
		{Platform{OS: "Linux", Arch: "AMD64"}, Platform{OS: "linux", Arch: "amd64"}, true},
		{Platform{OS: "linux", Arch: "*"}, Platform{OS: "linux", Arch: "riscv64"}, true},
		{AnyPlatform(), Platform{OS: "windows", Arch: "386"}, true},
		{Platform{OS: "darwin", Arch: "arm64"}, Platform{OS: "linux", Arch: "arm64"}, false},
	}
	for _, tc := range cases {
		if got := tc.tag.Matches(tc.target); got != tc.want {
			t.Fatalf("%s.Matches(%s) = %v, want %v", tc.tag, tc.target, got, tc.want)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	platform, err := ParsePlatform(" Darwin/ARM64 ")
	if err != nil {
		t.Fatalf("parse platform: %v", err)
	}
	if platform != (Platform{OS: "darwin", Arch: "arm64"}) {
		t.Fatalf("unexpected platform %s", platform)
	}
	for _, bad := range []string{"", "linux", "/amd64", "linux/"} {
		if _, err := ParsePlatform(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestTransportCandidate_AppliesTo(t *testing.T) {
	candidates := DefaultCandidates()
	linux := Platform{OS: "linux", Arch: "amd64"}
	darwin := Platform{OS: "darwin", Arch: "arm64"}
	windows := Platform{OS: "windows", Arch: "amd64"}

	applies := map[string][]bool{
		TransportEpoll:    {true, false, false},
		TransportKqueue:   {false, true, false},
		TransportIOUring:  {true, false, false},
		TransportPortable: {true, true, true},
	}
	for _, candidate := range candidates {
		want := applies[candidate.ID]
		for idx, platform := range []Platform{linux, darwin, windows} {
			if got := candidate.AppliesTo(platform); got != want[idx] {
				t.Fatalf("%s.AppliesTo(%s) = %v, want %v", candidate.ID, platform, got, want[idx])
			}
		}
	}
}

func TestBootstrapReport_Rejected(t *testing.T) {
	report := BootstrapReport{Results: []ProbeResult{
		unavailableResult(nativeCandidate("a", 2), nil),
		availableResult(nativeCandidate("b", 1), "ok"),
	}}
	rejected := report.Rejected()
	if len(rejected) != 1 || rejected[0].Candidate.ID != "a" || rejected[0].Reason != "unavailable" {
		t.Fatalf("unexpected rejections %+v", rejected)
	}
	ids := report.ProbedIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected probe ids %v", ids)
	}
}
