package generation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Mode selects how reference images drive the generation.
type Mode string

const (
	// ModeTextOnly generates from the prompt alone.
	ModeTextOnly Mode = "text_only"
	// ModeFirstFrame animates from exactly one starting image.
	ModeFirstFrame Mode = "first_frame"
	// ModeFirstLast interpolates between exactly two images tagged as
	// first and last frame.
	ModeFirstLast Mode = "first_last_frame"
	// ModeReference generates guided by one to four reference images.
	ModeReference Mode = "reference_images"
)

// ImageRole tags how a reference image is used by the remote model.
type ImageRole string

const (
	RoleFirstFrame ImageRole = "first_frame"
	RoleLastFrame  ImageRole = "last_frame"
	RoleReference  ImageRole = "reference_image"
)

// ImageInput is one image attached to a generation request.
type ImageInput struct {
	URL  string
	Role ImageRole
}

// Resolution selects the output resolution.
type Resolution string

const (
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// IsValid returns true for a known resolution.
func (r Resolution) IsValid() bool {
	switch r {
	case Resolution480p, Resolution720p, Resolution1080p:
		return true
	default:
		return false
	}
}

// Ratio selects the output aspect ratio. RatioAdaptive lets the service
// pick a ratio matching the input image.
type Ratio string

const (
	Ratio16x9     Ratio = "16:9"
	Ratio4x3      Ratio = "4:3"
	Ratio1x1      Ratio = "1:1"
	Ratio3x4      Ratio = "3:4"
	Ratio9x16     Ratio = "9:16"
	Ratio21x9     Ratio = "21:9"
	RatioAdaptive Ratio = "adaptive"
)

// IsValid returns true for a known ratio.
func (r Ratio) IsValid() bool {
	switch r {
	case Ratio16x9, Ratio4x3, Ratio1x1, Ratio3x4, Ratio9x16, Ratio21x9, RatioAdaptive:
		return true
	default:
		return false
	}
}

// ServiceTier trades latency for cost.
type ServiceTier string

const (
	// TierDefault is the interactive tier.
	TierDefault ServiceTier = "default"
	// TierFlex is the cheaper, slower economy tier.
	TierFlex ServiceTier = "flex"
)

// IsValid returns true for a known service tier.
func (t ServiceTier) IsValid() bool {
	return t == TierDefault || t == TierFlex
}

// DurationAuto asks the service to pick the clip duration.
const DurationAuto = -1

// MaxPromptLength is the hard ceiling on prompt length in characters.
const MaxPromptLength = 10000

const (
	minDurationSec = 4
	maxDurationSec = 12
)

// Params carries caller-supplied generation parameters before validation.
// Zero values mean "unset": duration defaults to DurationAuto, resolution
// to 720p, ratio to adaptive and service tier to the interactive tier.
type Params struct {
	Prompt          string
	Mode            Mode
	Images          []ImageInput
	Duration        int
	Resolution      Resolution
	Ratio           Ratio
	GenerateAudio   bool
	ServiceTier     ServiceTier
	ReturnLastFrame bool
}

// GenerationRequest is a validated, immutable job submission. Construct it
// with NewRequest; a value that did not pass through NewRequest carries no
// validity guarantee.
type GenerationRequest struct {
	Prompt          string
	Mode            Mode
	Images          []ImageInput
	Duration        int
	Resolution      Resolution
	Ratio           Ratio
	GenerateAudio   bool
	ServiceTier     ServiceTier
	ReturnLastFrame bool
}

// directivePattern matches inline text directives embedded in the prompt,
// e.g. "--ratio 16:9" or "--duration 5". They are a convenience encoding;
// the structured parameters stay the single source of truth.
var directivePattern = regexp.MustCompile(`\s*--(ratio|resolution|duration|dur)\s+(\S+)`)

// NewRequest validates the parameters and produces a GenerationRequest, or
// fails with a validation-kind Error before any network activity. It is a
// pure function with no side effects.
func NewRequest(p Params) (GenerationRequest, error) {
	prompt, dirs, err := extractDirectives(p.Prompt)
	if err != nil {
		return GenerationRequest{}, err
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GenerationRequest{}, newError(KindValidation, "prompt must not be empty")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return GenerationRequest{}, newError(KindValidation,
			fmt.Sprintf("prompt exceeds %d characters", MaxPromptLength))
	}

	req := GenerationRequest{
		Prompt:          prompt,
		Mode:            p.Mode,
		Duration:        p.Duration,
		Resolution:      p.Resolution,
		Ratio:           p.Ratio,
		GenerateAudio:   p.GenerateAudio,
		ServiceTier:     p.ServiceTier,
		ReturnLastFrame: p.ReturnLastFrame,
	}

	// Inline directives fill only parameters the caller left unset.
	if req.Ratio == "" && dirs.ratio != "" {
		req.Ratio = Ratio(dirs.ratio)
	}
	if req.Resolution == "" && dirs.resolution != "" {
		req.Resolution = Resolution(dirs.resolution)
	}
	if req.Duration == 0 && dirs.duration != 0 {
		req.Duration = dirs.duration
	}

	// Defaults for everything still unset.
	if req.Duration == 0 {
		req.Duration = DurationAuto
	}
	if req.Resolution == "" {
		req.Resolution = Resolution720p
	}
	if req.Ratio == "" {
		req.Ratio = RatioAdaptive
	}
	if req.ServiceTier == "" {
		req.ServiceTier = TierDefault
	}

	if req.Duration != DurationAuto && (req.Duration < minDurationSec || req.Duration > maxDurationSec) {
		return GenerationRequest{}, newError(KindValidation,
			fmt.Sprintf("duration must be %d or an integer in [%d,%d], got %d",
				DurationAuto, minDurationSec, maxDurationSec, req.Duration))
	}
	if !req.Resolution.IsValid() {
		return GenerationRequest{}, newError(KindValidation,
			fmt.Sprintf("unknown resolution %q", req.Resolution))
	}
	if !req.Ratio.IsValid() {
		return GenerationRequest{}, newError(KindValidation,
			fmt.Sprintf("unknown ratio %q", req.Ratio))
	}
	if !req.ServiceTier.IsValid() {
		return GenerationRequest{}, newError(KindValidation,
			fmt.Sprintf("unknown service tier %q", req.ServiceTier))
	}

	images, err := validateImages(p.Mode, p.Images)
	if err != nil {
		return GenerationRequest{}, err
	}
	req.Images = images

	return req, nil
}

// promptDirectives holds parameters parsed out of the prompt text.
type promptDirectives struct {
	ratio      string
	resolution string
	duration   int
}

// extractDirectives strips inline directives from the prompt and returns
// the cleaned prompt alongside the parsed values.
func extractDirectives(prompt string) (string, promptDirectives, error) {
	var dirs promptDirectives
	var parseErr error

	cleaned := directivePattern.ReplaceAllStringFunc(prompt, func(match string) string {
		groups := directivePattern.FindStringSubmatch(match)
		name, value := groups[1], groups[2]
		switch name {
		case "ratio":
			dirs.ratio = value
		case "resolution":
			dirs.resolution = value
		case "duration", "dur":
			d, err := strconv.Atoi(value)
			if err != nil {
				parseErr = newError(KindValidation,
					fmt.Sprintf("invalid --%s directive value %q", name, value))
				return ""
			}
			dirs.duration = d
		}
		return ""
	})

	if parseErr != nil {
		return "", promptDirectives{}, parseErr
	}
	return cleaned, dirs, nil
}

// validateImages enforces the mode's image count and role constraints and
// returns a normalized copy with roles filled in.
func validateImages(mode Mode, images []ImageInput) ([]ImageInput, error) {
	for i, img := range images {
		if img.URL == "" {
			return nil, newError(KindValidation, fmt.Sprintf("image %d has an empty URL", i))
		}
	}

	switch mode {
	case ModeTextOnly:
		if len(images) != 0 {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s takes no images, got %d", mode, len(images)))
		}
		return nil, nil

	case ModeFirstFrame:
		if len(images) != 1 {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s requires exactly 1 image, got %d", mode, len(images)))
		}
		img := images[0]
		if img.Role != "" && img.Role != RoleFirstFrame {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s does not accept role %q", mode, img.Role))
		}
		img.Role = RoleFirstFrame
		return []ImageInput{img}, nil

	case ModeFirstLast:
		if len(images) != 2 {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s requires exactly 2 images, got %d", mode, len(images)))
		}
		first, last := images[0], images[1]
		// Untagged pairs are assigned by position; anything else must be
		// tagged first then last.
		if first.Role == "" && last.Role == "" {
			first.Role, last.Role = RoleFirstFrame, RoleLastFrame
		}
		if first.Role != RoleFirstFrame || last.Role != RoleLastFrame {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s requires roles %s,%s in order, got %q,%q",
					mode, RoleFirstFrame, RoleLastFrame, first.Role, last.Role))
		}
		return []ImageInput{first, last}, nil

	case ModeReference:
		if len(images) < 1 || len(images) > 4 {
			return nil, newError(KindValidation,
				fmt.Sprintf("mode %s requires 1 to 4 images, got %d", mode, len(images)))
		}
		out := make([]ImageInput, 0, len(images))
		for _, img := range images {
			if img.Role != "" && img.Role != RoleReference {
				return nil, newError(KindValidation,
					fmt.Sprintf("mode %s does not accept role %q", mode, img.Role))
			}
			img.Role = RoleReference
			out = append(out, img)
		}
		return out, nil

	default:
		return nil, newError(KindValidation, fmt.Sprintf("unknown mode %q", mode))
	}
}
