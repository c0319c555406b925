package jsoncfg

import "testing"

func TestBriefNormalizeDefaults(t *testing.T) {
	b := &BriefJSON{Theme: "adventure", Topic: "lost city"}
	b.Normalize("id")

	if b.Version != DefaultBriefVersion {
		t.Fatalf("Version = %q, want %q", b.Version, DefaultBriefVersion)
	}
	if b.AspectRatio != DefaultBriefAspectRatio {
		t.Fatalf("AspectRatio = %q, want %q", b.AspectRatio, DefaultBriefAspectRatio)
	}
	if b.SegmentCount != DefaultSegmentCount {
		t.Fatalf("SegmentCount = %d, want %d", b.SegmentCount, DefaultSegmentCount)
	}
	if b.Extras.Locale != "id" {
		t.Fatalf("Extras.Locale = %q, want %q", b.Extras.Locale, "id")
	}
	if b.Extras.Quality != DefaultExtrasQuality {
		t.Fatalf("Extras.Quality = %q, want %q", b.Extras.Quality, DefaultExtrasQuality)
	}
}

func TestBriefNormalizeCapsSegments(t *testing.T) {
	b := &BriefJSON{Theme: "mystery", Topic: "midnight train", SegmentCount: 40}
	b.Normalize("")
	if b.SegmentCount != MaxSegmentCount {
		t.Fatalf("SegmentCount = %d, want %d", b.SegmentCount, MaxSegmentCount)
	}
}

func TestBriefValidate(t *testing.T) {
	tests := []struct {
		name    string
		brief   BriefJSON
		wantErr bool
	}{
		{
			name:  "valid",
			brief: BriefJSON{Theme: "scifi", Topic: "mars colony", AspectRatio: "16:9", SegmentCount: 3},
		},
		{
			name:    "missing theme",
			brief:   BriefJSON{Topic: "mars colony", AspectRatio: "16:9", SegmentCount: 3},
			wantErr: true,
		},
		{
			name:    "unknown theme",
			brief:   BriefJSON{Theme: "horror", Topic: "mars colony", AspectRatio: "16:9", SegmentCount: 3},
			wantErr: true,
		},
		{
			name:    "missing topic",
			brief:   BriefJSON{Theme: "scifi", AspectRatio: "16:9", SegmentCount: 3},
			wantErr: true,
		},
		{
			name:    "bad aspect ratio",
			brief:   BriefJSON{Theme: "scifi", Topic: "mars colony", AspectRatio: "21:9", SegmentCount: 3},
			wantErr: true,
		},
		{
			name:    "segment count out of range",
			brief:   BriefJSON{Theme: "scifi", Topic: "mars colony", AspectRatio: "16:9", SegmentCount: 20},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.brief.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}
