package enhance

import (
	"testing"

	"boostd/internal/immich"
)

func TestOutputName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"clip+12.mp4", "clip_boosted.mp4"},
		{"clip.mp4", "clip_boosted.mp4"},
		{"clip", "clip_boosted.mp4"},
		{"holiday+3.MOV", "holiday_boosted.mp4"},
		{"a+b+2.mp4", "a+b_boosted.mp4"},
		{"plus+sign.mp4", "plus+sign_boosted.mp4"},
	}
	for _, tc := range cases {
		if got := OutputName(tc.in); got != tc.want {
			t.Errorf("OutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsBoosted(t *testing.T) {
	if !IsBoosted(immich.Asset{OriginalFileName: "clip_boosted.mp4"}) {
		t.Fatal("expected marker in filename to be detected")
	}
	if !IsBoosted(immich.Asset{OriginalPath: "/library/clip_boosted.mp4"}) {
		t.Fatal("expected marker in path to be detected")
	}
	if IsBoosted(immich.Asset{OriginalFileName: "clip.mp4", OriginalPath: "/library/clip.mp4"}) {
		t.Fatal("expected plain asset not to be flagged")
	}
}

func TestScratchExt(t *testing.T) {
	if got := scratchExt("clip.mov"); got != ".mov" {
		t.Fatalf("scratchExt = %q", got)
	}
	if got := scratchExt("clip"); got != ".mp4" {
		t.Fatalf("scratchExt default = %q", got)
	}
}
