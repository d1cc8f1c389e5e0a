package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestGetExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/path/to/file.py", "py"},
		{"/path/to/file.PY", "PY"}, // Extension preserves case
		{"/path/to/main.go", "go"},
		{"/path/to/.htaccess", "htaccess"},
		{"/path/to/file", ""},
		{"/path/to/file.tar.gz", "gz"},
		{"Main.java", "java"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := GetExtension(tt.path); got != tt.expected {
				t.Errorf("GetExtension(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "sub", "test.py")
	testContent := "import os\nos.system('ls')\n"

	if err := os.MkdirAll(filepath.Dir(testFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(testFile, []byte(testContent), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	stat, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat test file: %v", err)
	}

	fileInfo := &models.FileInfo{
		Path: testFile,
		Size: stat.Size(),
	}

	file, err := ReadFile(fileInfo, tmpDir)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(file.Content) != testContent {
		t.Errorf("File content = %q, want %q", string(file.Content), testContent)
	}
	if file.RelativePath != filepath.Join("sub", "test.py") {
		t.Errorf("RelativePath = %q", file.RelativePath)
	}
	if file.Extension != "py" {
		t.Errorf("File extension = %q, want py", file.Extension)
	}
	if file.Language != models.LangPython {
		t.Errorf("Language = %q, want python", file.Language)
	}
}

func TestReadFile_NonExistent(t *testing.T) {
	fileInfo := &models.FileInfo{
		Path: "/nonexistent/file.py",
		Size: 0,
	}

	if _, err := ReadFile(fileInfo, "/nonexistent"); err == nil {
		t.Error("ReadFile() expected error for non-existent file, got nil")
	}
}

func TestWalkExcludes(t *testing.T) {
	tmpDir := t.TempDir()
	keep := filepath.Join(tmpDir, "src", "main.py")
	skip := filepath.Join(tmpDir, "node_modules", "dep.py")
	for _, path := range []string{keep, skip} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("print(1)\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &config.Config{Exclude: []string{"node_modules"}}
	w := NewWalker(cfg, zap.NewNop())

	var seen []string
	err := w.Walk(tmpDir, func(info *models.FileInfo) error {
		if !info.IsDir {
			seen = append(seen, info.Path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(seen) != 1 || seen[0] != keep {
		t.Errorf("walked files = %v, want only %q", seen, keep)
	}
}
