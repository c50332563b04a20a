package render_test

import (
	"testing"

	"github.com/cellforge/avs/env"
	"github.com/cellforge/avs/render"
	"github.com/cellforge/avs/value"
)

func TestDisplayNumber(t *testing.T) {
	e := env.New()
	if got := render.Display(value.FromFloat64(2), e); got != "2" {
		t.Errorf("Display(2.0) = %q, want %q", got, "2")
	}
	if got := render.Display(value.FromFloat64(-2), e); got != "-2" {
		t.Errorf("Display(-2.0) = %q, want %q", got, "-2")
	}
	if got := render.Display(value.FromFloat64(2.5), e); got != "2.5" {
		t.Errorf("Display(2.5) = %q, want %q", got, "2.5")
	}
}

func TestDisplayBooleanAndNone(t *testing.T) {
	e := env.New()
	if got := render.Display(value.TRUE, e); got != "True" {
		t.Errorf("Display(TRUE) = %q", got)
	}
	if got := render.Display(value.FALSE, e); got != "False" {
		t.Errorf("Display(FALSE) = %q", got)
	}
	if got := render.Display(value.NONE, e); got != "None" {
		t.Errorf("Display(NONE) = %q", got)
	}
}

func TestDisplayString(t *testing.T) {
	e := env.New()
	sym := e.DefineIdentifier()
	v := e.BindString(sym, "hi")
	if got := render.Display(v, e); got != `"hi"` {
		t.Errorf("Display(string) = %q, want %q", got, `"hi"`)
	}
}

func TestDisplayError(t *testing.T) {
	e := env.New()
	got := render.Display(value.RuntimeErrDivZ, e)
	if got != value.ErrorMessage(value.RuntimeErrDivZ) {
		t.Errorf("Display(error) = %q, want the error message", got)
	}
}

func TestDisplayPointerName(t *testing.T) {
	e := env.New()
	sym := e.DefineIdentifier()
	e.BindName(sym, "Total")
	if got := render.Display(value.EncodeSymbol(sym), e); got != "Total" {
		t.Errorf("Display(pointer) = %q, want %q", got, "Total")
	}
}
