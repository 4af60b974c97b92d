package stdlib

import (
	"testing"

	"decicalc/interpreter"
)

func TestLoadLibrariesInstallsEmbeddedStdlib(t *testing.T) {
	ctx := newTestCtx()
	if err := LoadLibraries(ctx, nil); err != nil {
		t.Fatalf("LoadLibraries: %v", err)
	}
	if _, ok := ctx.GlobalScope.Get("Sum"); !ok {
		t.Error("Sum should be defined in the global scope after loading the embedded stdlib")
	}
	if _, ok := ctx.GlobalScope.Get("Average"); !ok {
		t.Error("Average should be defined in the global scope after loading the embedded stdlib")
	}
}

func TestLoadSourceRejectsMalformedLibrary(t *testing.T) {
	ctx := newTestCtx()
	err := LoadSource(ctx, "bad.bw", "function broken(\nend function")
	if err == nil {
		t.Fatal("expected a parse error for a malformed library file")
	}
}

func TestLoadSourcePropagatesFatalFromTopLevelStatement(t *testing.T) {
	ctx := newTestCtx()
	err := LoadSource(ctx, "fatal.bw", "Fatal(\"boom\")")
	if err == nil {
		t.Fatal("expected the Fatal() call to surface as an error from LoadSource")
	}
	if _, ok := err.(*interpreter.FatalError); ok {
		t.Error("LoadSource wraps the error with fmt.Errorf, so it should no longer type-assert as *FatalError")
	}
}
