package image

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"mockup/internal/domain"
)

// reconcile collapses the service's result list into a single Outcome. The
// first entry decides: a URL wins over inline data; an entry with neither is
// a malformed response.
func reconcile(data []openai.ImageResponseDataInner) (*Outcome, error) {
	if len(data) == 0 {
		return nil, domain.NewEmptyResponse("generation service returned no images")
	}
	first := data[0]
	if u := strings.TrimSpace(first.URL); u != "" {
		return &Outcome{Kind: OutcomeURL, URL: u}, nil
	}
	if b64 := strings.TrimSpace(first.B64JSON); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, domain.NewServiceError("generation service returned invalid base64 image", err)
		}
		return inlineOutcome(raw, ""), nil
	}
	return nil, domain.NewServiceError("generation service returned an image without url or data", nil)
}

// inlineOutcome sniffs the content type when the provider does not name one.
func inlineOutcome(raw []byte, mimeType string) *Outcome {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(raw)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/png"
		}
	}
	return &Outcome{Kind: OutcomeInline, Data: raw, MIMEType: mimeType}
}
