package models

import (
	"time"
)

// File represents a source unit loaded for analysis
type File struct {
	Path         string    // Full file path
	RelativePath string    // Path relative to the analysis root
	Name         string    // File name
	Extension    string    // File extension (without dot)
	Size         int64     // File size in bytes
	ModTime      time.Time // Modification time
	Content      []byte    // File content
	Language     Language  // Detected language
}

// FileInfo contains basic file information without content
type FileInfo struct {
	Path      string
	Size      int64
	ModTime   time.Time
	IsDir     bool
	IsSymlink bool
	IsHidden  bool
}
