package syntax

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/parser"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func newTestChecker() *Checker {
	return NewChecker(parser.NewParser(), zap.NewNop())
}

func TestCheckPython(t *testing.T) {
	c := newTestChecker()

	valid := c.Check(context.Background(), []byte("def ok():\n    return 1\n"), models.LangPython)
	if !valid.Valid {
		t.Errorf("valid python reported invalid: %+v", valid.Errors)
	}

	invalid := c.Check(context.Background(), []byte("def broken(:\n    pass\n"), models.LangPython)
	if invalid.Valid {
		t.Error("invalid python reported valid")
	}
	if len(invalid.Errors) == 0 {
		t.Error("invalid python produced no error locations")
	}
}

func TestCheckGo(t *testing.T) {
	c := newTestChecker()

	valid := c.Check(context.Background(), []byte("package main\n\nfunc main() {}\n"), models.LangGo)
	if !valid.Valid {
		t.Errorf("valid go reported invalid: %+v", valid.Errors)
	}

	invalid := c.Check(context.Background(), []byte("package main\n\nfunc main() {\n"), models.LangGo)
	if invalid.Valid {
		t.Error("invalid go reported valid")
	}
	if len(invalid.Errors) == 0 || invalid.Errors[0].Line == 0 {
		t.Errorf("invalid go errors missing locations: %+v", invalid.Errors)
	}
}

func TestCheckJava(t *testing.T) {
	c := newTestChecker()

	valid := c.Check(context.Background(), []byte("public class T {\n    void run() {}\n}\n"), models.LangJava)
	if !valid.Valid {
		t.Errorf("valid java reported invalid: %+v", valid.Errors)
	}

	invalid := c.Check(context.Background(), []byte("public class T {\n    void run( {\n}\n"), models.LangJava)
	if invalid.Valid {
		t.Error("invalid java reported valid")
	}
}

func TestCheckUnsupported(t *testing.T) {
	c := newTestChecker()
	report := c.Check(context.Background(), []byte("anything"), models.LangUnknown)
	if !report.Valid {
		t.Error("unsupported language should be reported valid")
	}
	if report.Note == "" {
		t.Error("unsupported language should carry a note")
	}
}
