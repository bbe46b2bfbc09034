package design

import (
	"errors"
	"strings"
	"testing"
)

// TestDefault_Valid tests that the stock theme passes validation.
func TestDefault_Valid(t *testing.T) {
	d := Default()
	if err := d.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestValidate_BadColor tests that a non-hex color fails validation.
func TestValidate_BadColor(t *testing.T) {
	d := Default()
	d.CourseBg = "blue; background: url(x)"
	if err := d.Validate(); err == nil {
		t.Error("expected error for invalid color")
	}
}

// TestValidate_ImageSize tests the background sizing enum.
func TestValidate_ImageSize(t *testing.T) {
	d := Default()
	d.BgImageSize = "stretch"
	if err := d.Validate(); err == nil {
		t.Error("expected error for invalid image size")
	}
}

// TestValidate_Image tests inline image constraints.
func TestValidate_Image(t *testing.T) {
	d := Default()
	d.BgImage = "https://example.com/x.png"
	if err := d.Validate(); !errors.Is(err, ErrImageNotDataURL) {
		t.Errorf("got %v, want ErrImageNotDataURL", err)
	}
	d.BgImage = "data:image/png;base64," + strings.Repeat("A", maxImageBytes)
	if err := d.Validate(); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("got %v, want ErrImageTooLarge", err)
	}
	d.BgImage = "data:image/png;base64,AAAA"
	if err := d.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestBackground tests gradient and flat backgrounds.
func TestBackground(t *testing.T) {
	d := Default()
	if got := d.Background(); !strings.HasPrefix(got, "linear-gradient(135deg, #667eea") {
		t.Errorf("got %q", got)
	}
	d.BgGradient = false
	if got := d.Background(); got != "#667eea" {
		t.Errorf("got %q", got)
	}
}

// TestValidate_CSSInjection tests that values cannot escape a style block.
func TestValidate_CSSInjection(t *testing.T) {
	d := Default()
	d.TitleFont = "x; } body { display: none"
	if err := d.Validate(); err == nil {
		t.Error("expected error for font with braces")
	}
	d = Default()
	d.BgImage = `data:image/png;base64,AA") no-repeat; background: url("x`
	if err := d.Validate(); !errors.Is(err, ErrImageNotDataURL) {
		t.Errorf("got %v, want ErrImageNotDataURL", err)
	}
}
