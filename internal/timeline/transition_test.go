package timeline

import "testing"

func TestParseTypeUnknownFallsBackToFade(t *testing.T) {
	if got := ParseType("definitely-not-a-transition"); got != TypeFade {
		t.Errorf("ParseType(unknown) = %q, want %q", got, TypeFade)
	}
	if got := ParseType("glitch-heavy"); got != TypeGlitchHeavy {
		t.Errorf("ParseType(glitch-heavy) = %q", got)
	}
}

func TestUnknownTypeFamilyIsFade(t *testing.T) {
	if got := Type("mystery").Family(); got != FamilyFade {
		t.Errorf("unknown family = %v, want fade", got)
	}
}

func TestCatalogFamiliesAreTotal(t *testing.T) {
	for _, typ := range Types() {
		fam := typ.Family()
		if fam.String() == "unknown" {
			t.Errorf("type %q maps to unknown family", typ)
		}
	}
}

func TestCatalogSize(t *testing.T) {
	// cut plus the named variants; the catalog is closed
	if got := len(Types()); got < 100 {
		t.Errorf("catalog has %d types, expected the full variant set", got)
	}
}

func TestIsCut(t *testing.T) {
	cases := []struct {
		name string
		desc Descriptor
		want bool
	}{
		{"cut type", Descriptor{Type: TypeCut, Duration: 1}, true},
		{"zero duration fade", Descriptor{Type: TypeFade, Duration: 0}, true},
		{"normal fade", Descriptor{Type: TypeFade, Duration: 1}, false},
		{"negative duration", Descriptor{Type: TypeWipeLeft, Duration: -1}, true},
	}
	for _, tc := range cases {
		if got := tc.desc.IsCut(); got != tc.want {
			t.Errorf("%s: IsCut() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestVariantsShareFamilies(t *testing.T) {
	// Named variants intentionally collapse onto one blend family
	pairs := []struct {
		a, b Type
	}{
		{TypeFlash, TypeStrobe},
		{TypeGlitch, TypeVHS},
		{TypeSlideLeft, TypePushRight},
		{TypeCircleOpen, TypeCheckerboard},
	}
	for _, p := range pairs {
		if p.a.Family() != p.b.Family() {
			t.Errorf("%q and %q should share a family", p.a, p.b)
		}
	}
}
