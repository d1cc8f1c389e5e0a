package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/lang"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// ReadFile reads a file, detects its language and returns a File model.
// The root is used to compute the relative path shown in reports.
func ReadFile(fileInfo *models.FileInfo, root string) (*models.File, error) {
	content, err := os.ReadFile(fileInfo.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	relPath, err := filepath.Rel(root, fileInfo.Path)
	if err != nil {
		relPath = fileInfo.Path
	}

	return &models.File{
		Path:         fileInfo.Path,
		RelativePath: relPath,
		Name:         filepath.Base(fileInfo.Path),
		Extension:    GetExtension(fileInfo.Path),
		Size:         fileInfo.Size,
		ModTime:      fileInfo.ModTime,
		Content:      content,
		Language:     lang.Detect(fileInfo.Path, content),
	}, nil
}
