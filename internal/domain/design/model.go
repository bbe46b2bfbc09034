package design

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Background image sizing modes.
const (
	SizeCover   = "cover"
	SizeContain = "contain"
	SizeAuto    = "auto"
)

// maxImageBytes caps an inline background image (a data: URL).
const maxImageBytes = 2 << 20

// ErrImageTooLarge is returned when the inline background image exceeds maxImageBytes.
var ErrImageTooLarge = errors.New("background image is too large")

// ErrImageNotDataURL is returned when the background image is not an inline image.
var ErrImageNotDataURL = errors.New("background image must be a data:image URL")

var validate = validator.New()

// Design is the presentation theme of the board. It is stored as one JSON blob
// and is never read by the unlock logic.
type Design struct {
	BgColor         string `json:"bgColor" validate:"hexcolor"`
	BgColor2        string `json:"bgColor2" validate:"hexcolor"`
	BgGradient      bool   `json:"bgGradient"`
	BgImage         string `json:"bgImage,omitempty"`
	BgImageOpacity  int    `json:"bgImageOpacity" validate:"min=0,max=100"`
	BgImageSize     string `json:"bgImageSize" validate:"oneof=cover contain auto"`
	TitleColor      string `json:"titleColor" validate:"hexcolor"`
	TitleSize       string `json:"titleSize" validate:"numeric"`
	TitleFont       string `json:"titleFont" validate:"required,max=120,excludesall=;{}<>()\\"`
	HeaderBg        string `json:"headerBg" validate:"hexcolor"`
	HeaderText      string `json:"headerText" validate:"hexcolor"`
	HeaderRadius    string `json:"headerRadius" validate:"numeric"`
	CourseBg        string `json:"courseBg" validate:"hexcolor"`
	CourseBorder    string `json:"courseBorder" validate:"hexcolor"`
	CourseText      string `json:"courseText" validate:"hexcolor"`
	CourseRadius    string `json:"courseRadius" validate:"numeric"`
	UnlockedBorder  string `json:"unlockedBorder" validate:"hexcolor"`
	UnlockedBg      string `json:"unlockedBg" validate:"hexcolor"`
	CompletedBg     string `json:"completedBg" validate:"hexcolor"`
	CompletedBorder string `json:"completedBorder" validate:"hexcolor"`
	CompletedText   string `json:"completedText" validate:"hexcolor"`
}

// Default returns the stock theme.
func Default() Design {
	return Design{
		BgColor:         "#667eea",
		BgColor2:        "#764ba2",
		BgGradient:      true,
		BgImageOpacity:  100,
		BgImageSize:     SizeCover,
		TitleColor:      "#667eea",
		TitleSize:       "36",
		TitleFont:       "'Segoe UI', sans-serif",
		HeaderBg:        "#667eea",
		HeaderText:      "#ffffff",
		HeaderRadius:    "12",
		CourseBg:        "#f8f9fa",
		CourseBorder:    "#e9ecef",
		CourseText:      "#495057",
		CourseRadius:    "12",
		UnlockedBorder:  "#667eea",
		UnlockedBg:      "#ffffff",
		CompletedBg:     "#d4edda",
		CompletedBorder: "#28a745",
		CompletedText:   "#155724",
	}
}

// Validate checks every field against its allowed form.
// PRE: none
// POST: returns nil if the design can be persisted and applied
func (d *Design) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if d.BgImage != "" {
		if !strings.HasPrefix(d.BgImage, "data:image/") || strings.ContainsAny(d.BgImage, "\"'()<>\\ \t\r\n") {
			return ErrImageNotDataURL
		}
		if len(d.BgImage) > maxImageBytes {
			return ErrImageTooLarge
		}
	}
	return nil
}

// Background returns the CSS background for the page.
func (d *Design) Background() string {
	if d.BgGradient {
		return "linear-gradient(135deg, " + d.BgColor + " 0%, " + d.BgColor2 + " 100%)"
	}
	return d.BgColor
}
