package cvpdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"
	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

const defaultScale = 1.0

// DefaultPageOptions prints A4 with backgrounds and 12mm margins.
var DefaultPageOptions = PageOptions{
	PageSize:        "A4",
	PrintBackground: boolPtr(true),
	MarginTop:       "12mm",
	MarginBottom:    "12mm",
	MarginLeft:      "12mm",
	MarginRight:     "12mm",
}

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

var pageSizesInches = map[string]struct {
	width  float64
	height float64
}{
	"A4":     {width: 8.27, height: 11.69},
	"A5":     {width: 5.83, height: 8.27},
	"LETTER": {width: 8.5, height: 11},
	"LEGAL":  {width: 8.5, height: 14},
}

// PageOptions controls paper and print settings.
type PageOptions struct {
	PageSize          string  `json:"page_size,omitempty" mapstructure:"page_size"`
	Landscape         *bool   `json:"landscape,omitempty" mapstructure:"landscape"`
	PrintBackground   *bool   `json:"print_background,omitempty" mapstructure:"print_background"`
	Scale             float64 `json:"scale,omitempty" mapstructure:"scale"`
	MarginTop         string  `json:"margin_top,omitempty" mapstructure:"margin_top"`
	MarginBottom      string  `json:"margin_bottom,omitempty" mapstructure:"margin_bottom"`
	MarginLeft        string  `json:"margin_left,omitempty" mapstructure:"margin_left"`
	MarginRight       string  `json:"margin_right,omitempty" mapstructure:"margin_right"`
	PreferCSSPageSize *bool   `json:"prefer_css_page_size,omitempty" mapstructure:"prefer_css_page_size"`
	BaseURL           string  `json:"base_url,omitempty" mapstructure:"base_url"`
	BlockExternal     bool    `json:"block_external,omitempty" mapstructure:"block_external"`
}

// Merge returns o with every set field of override applied.
func (o PageOptions) Merge(override PageOptions) PageOptions {
	merged := o
	if override.PageSize != "" {
		merged.PageSize = override.PageSize
	}
	if override.Landscape != nil {
		merged.Landscape = override.Landscape
	}
	if override.PrintBackground != nil {
		merged.PrintBackground = override.PrintBackground
	}
	if override.Scale != 0 {
		merged.Scale = override.Scale
	}
	for _, m := range []struct {
		dst *string
		src string
	}{
		{&merged.MarginTop, override.MarginTop},
		{&merged.MarginBottom, override.MarginBottom},
		{&merged.MarginLeft, override.MarginLeft},
		{&merged.MarginRight, override.MarginRight},
		{&merged.BaseURL, override.BaseURL},
	} {
		if m.src != "" {
			*m.dst = m.src
		}
	}
	if override.PreferCSSPageSize != nil {
		merged.PreferCSSPageSize = override.PreferCSSPageSize
	}
	if override.BlockExternal {
		merged.BlockExternal = true
	}
	return merged
}

// Validate reports option values no engine can honour.
func (o PageOptions) Validate() error {
	if o.Scale != 0 && (o.Scale < 0.1 || o.Scale > 2.0) {
		return cv.NewValidationError("invalid pdf options", optionError("scale", "must be between 0.1 and 2.0"))
	}
	if o.PageSize != "" {
		if _, ok := pageSizesInches[strings.ToUpper(o.PageSize)]; !ok {
			return cv.NewValidationError("invalid pdf options", optionError("page_size", fmt.Sprintf("unsupported page size %s", o.PageSize)))
		}
	}
	for field, value := range o.margins() {
		if value == "" {
			continue
		}
		if _, err := parseLengthInches(value); err != nil {
			return cv.NewValidationError("invalid pdf options", optionError(field, err.Error()))
		}
	}
	return nil
}

func (o PageOptions) margins() map[string]string {
	return map[string]string{
		"margin_top":    o.MarginTop,
		"margin_bottom": o.MarginBottom,
		"margin_left":   o.MarginLeft,
		"margin_right":  o.MarginRight,
	}
}

func buildPrintToPDFParams(opts PageOptions) (*page.PrintToPDFParams, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	params := page.PrintToPDF()

	scale := opts.Scale
	if scale == 0 {
		scale = defaultScale
	}
	params = params.WithScale(scale)

	if opts.Landscape != nil {
		params = params.WithLandscape(*opts.Landscape)
	}
	if opts.PrintBackground != nil {
		params = params.WithPrintBackground(*opts.PrintBackground)
	}

	preferCSS := opts.PageSize == ""
	if opts.PreferCSSPageSize != nil {
		preferCSS = *opts.PreferCSSPageSize
	}
	if preferCSS {
		params = params.WithPreferCSSPageSize(true)
	}

	if opts.PageSize != "" {
		size := pageSizesInches[strings.ToUpper(opts.PageSize)]
		params = params.WithPaperWidth(size.width).WithPaperHeight(size.height)
	}

	if opts.MarginTop != "" {
		v, _ := parseLengthInches(opts.MarginTop)
		params = params.WithMarginTop(v)
	}
	if opts.MarginBottom != "" {
		v, _ := parseLengthInches(opts.MarginBottom)
		params = params.WithMarginBottom(v)
	}
	if opts.MarginLeft != "" {
		v, _ := parseLengthInches(opts.MarginLeft)
		params = params.WithMarginLeft(v)
	}
	if opts.MarginRight != "" {
		v, _ := parseLengthInches(opts.MarginRight)
		params = params.WithMarginRight(v)
	}
	return params, nil
}

func parseLengthInches(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid length %q", value)
	}
	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", value)
	}

	switch unit := strings.ToLower(matches[2]); unit {
	case "", "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, fmt.Errorf("unsupported length unit %q", unit)
	}
}

func optionError(field, msg string) errorslib.FieldError {
	return errorslib.FieldError{Field: field, Message: msg}
}

func boolPtr(value bool) *bool {
	return &value
}
