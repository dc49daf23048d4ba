package domain

import (
	"fmt"
	"io"
	"strings"
)

// DefaultVariant is used when the client omits the variant field.
const DefaultVariant = "default"

// Stage names a step of the mockup pipeline. It is attached to errors and
// log lines so failures can be traced to the step that produced them.
type Stage string

const (
	StageValidating     Stage = "validating"
	StageNormalizing    Stage = "normalizing"
	StageCompositing    Stage = "compositing"
	StagePromptBuilding Stage = "prompt_building"
	StageGenerating     Stage = "generating"
	StageCompleted      Stage = "completed"
	StageFailed         Stage = "failed"
)

// ValidationPolicy decides which uploads a deployment requires.
type ValidationPolicy string

const (
	RequireBoth    ValidationPolicy = "require_both"
	RequireProduct ValidationPolicy = "require_product"
	RequireLogo    ValidationPolicy = "require_logo"
)

// CompositionPolicy decides what happens to the logo when both uploads exist.
type CompositionPolicy string

const (
	OverlayLocal CompositionPolicy = "overlay_local"
	SendAsMask   CompositionPolicy = "send_as_mask"
	SendNone     CompositionPolicy = "none"
)

// ParseValidationPolicy accepts the snake_case names as well as the upper-case
// aliases used in deployment manifests (REQUIRE_PRODUCT_ONLY and friends).
func ParseValidationPolicy(raw string) (ValidationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "require_both", "both":
		return RequireBoth, nil
	case "", "require_product", "require_product_only", "product":
		return RequireProduct, nil
	case "require_logo", "require_logo_only", "logo":
		return RequireLogo, nil
	default:
		return "", fmt.Errorf("unknown validation policy %q", raw)
	}
}

func ParseCompositionPolicy(raw string) (CompositionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "overlay_local", "overlay":
		return OverlayLocal, nil
	case "send_as_mask", "mask":
		return SendAsMask, nil
	case "none", "send_separate_none", "send_separate":
		return SendNone, nil
	default:
		return "", fmt.Errorf("unknown composition policy %q", raw)
	}
}

// Upload is a raw image received from a client. It belongs to the request
// that received it and is never retained after the request completes.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// MockupRequest is the validated input handed from the web layer to the
// pipeline. Product and Logo are nil when the client did not send the file.
type MockupRequest struct {
	ProductName string
	Variant     string
	Product     *Upload
	Logo        *Upload
}

// VariantOrDefault returns the trimmed variant or DefaultVariant.
func (r MockupRequest) VariantOrDefault() string {
	if v := strings.TrimSpace(r.Variant); v != "" {
		return v
	}
	return DefaultVariant
}

// Validate enforces the deployment policy. A request without any image is
// always rejected regardless of policy.
func (r MockupRequest) Validate(policy ValidationPolicy) error {
	hasProduct, hasLogo := r.Product != nil, r.Logo != nil
	if !hasProduct && !hasLogo {
		return NewMissingInput("product image or logo image is required")
	}
	switch policy {
	case RequireBoth:
		if !hasProduct || !hasLogo {
			return NewMissingInput("product image and logo are required")
		}
	case RequireLogo:
		if !hasLogo {
			return NewMissingInput("logo image is required")
		}
	default:
		if !hasProduct {
			return NewMissingInput("product image is required")
		}
	}
	return nil
}

// MockupResult is the success payload returned to the client.
type MockupResult struct {
	Variant  string `json:"variant"`
	Product  string `json:"product,omitempty"`
	ImageURL string `json:"image_url"`
}
