package image

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"

	"mockup/internal/domain"
)

func TestReconcile(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	tests := []struct {
		name     string
		data     []openai.ImageResponseDataInner
		wantKind OutcomeKind
		wantErr  error
		wantMIME string
	}{
		{name: "empty list", data: nil, wantErr: domain.ErrEmptyResponse},
		{name: "url", data: []openai.ImageResponseDataInner{{URL: "https://x/y.png"}}, wantKind: OutcomeURL},
		{name: "url wins over data", data: []openai.ImageResponseDataInner{{URL: "https://x/y.png", B64JSON: "AAAA"}}, wantKind: OutcomeURL},
		{name: "png base64", data: []openai.ImageResponseDataInner{{B64JSON: base64.StdEncoding.EncodeToString(pngMagic)}}, wantKind: OutcomeInline, wantMIME: "image/png"},
		{name: "jpeg base64", data: []openai.ImageResponseDataInner{{B64JSON: base64.StdEncoding.EncodeToString(jpeg)}}, wantKind: OutcomeInline, wantMIME: "image/jpeg"},
		{name: "bad base64", data: []openai.ImageResponseDataInner{{B64JSON: "!!not-base64!!"}}, wantErr: domain.ErrService},
		{name: "neither", data: []openai.ImageResponseDataInner{{RevisedPrompt: "only text"}}, wantErr: domain.ErrService},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := reconcile(tc.data)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Kind != tc.wantKind {
				t.Fatalf("kind = %v, want %v", out.Kind, tc.wantKind)
			}
			if tc.wantMIME != "" && out.MIMEType != tc.wantMIME {
				t.Fatalf("mime = %q, want %q", out.MIMEType, tc.wantMIME)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]Size{"": Size1024, "512": Size512, "512X512": Size512, "1024x1024": Size1024}
	for in, want := range tests {
		got, err := ParseSize(in)
		if err != nil || got != want {
			t.Fatalf("ParseSize(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSize("256x256"); err == nil {
		t.Fatalf("expected error for unsupported size")
	}
}
