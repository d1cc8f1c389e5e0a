package core

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/analysis"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/filesystem"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/lang"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/report"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/rules"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Version is stamped into project results and reports.
const Version = "0.1.0"

// ProgressCallback is called to report analysis progress
type ProgressCallback func(phase string, current, total int, message string)

// Scanner analyzes a file or a whole directory tree with a worker pool
type Scanner struct {
	config           *config.Config
	logger           *zap.Logger
	ruleSet          *models.RuleSet
	walker           *filesystem.Walker
	reporter         *report.Generator
	results          *models.ProjectResults
	progressCallback ProgressCallback
	mu               sync.Mutex
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, logger *zap.Logger) *Scanner {
	return &Scanner{
		config:  cfg,
		logger:  logger,
		results: &models.ProjectResults{},
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// Scan analyzes the path and generates the configured report
func (s *Scanner) Scan(path string) (*models.ProjectResults, error) {
	s.logger.Info("Starting analysis", zap.String("path", path))

	s.results.StartTime = time.Now()
	s.results.ScanPath = path
	s.results.Version = Version

	s.walker = filesystem.NewWalker(s.config, s.logger)

	var err error
	s.reporter, err = report.NewGenerator(s.config, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report generator: %w", err)
	}

	s.ruleSet, err = rules.NewLoader(s.config.RulesPath, s.logger).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	s.logger.Info("Loaded rules", zap.Int("count", len(s.ruleSet.Rules)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	if info.IsDir() {
		err = s.scanDirectory(ctx, path)
	} else {
		err = s.scanSingleFile(ctx, path, info)
	}
	if err != nil {
		return nil, err
	}

	s.results.EndTime = time.Now()
	s.results.Duration = s.results.EndTime.Sub(s.results.StartTime)

	risk := projectRisk(s.results)
	s.results.Risk = &risk

	reportPath, err := s.reporter.Generate(s.results)
	if err != nil {
		s.logger.Error("Failed to generate report", zap.Error(err))
		return s.results, err
	}
	s.results.ReportPath = reportPath

	s.logger.Info("Analysis completed",
		zap.Duration("duration", s.results.Duration),
		zap.Int("analyzed", s.results.AnalyzedFiles),
		zap.Int("threats_found", s.results.ThreatsFound()))

	return s.results, nil
}

// scanSingleFile analyzes one explicitly named file
func (s *Scanner) scanSingleFile(ctx context.Context, path string, info os.FileInfo) error {
	s.results.TotalFiles = 1
	s.results.Workers = 1

	fileInfo := &models.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	analyzer := newFileAnalyzer(s.config, s.logger, s.ruleSet)
	result := s.analyzeOne(ctx, analyzer, fileInfo, path)
	s.results.AddResult(result)
	s.reportProgress("analyzing", 1, 1, path)
	return nil
}

// scanDirectory analyzes every candidate file under root with a worker pool
func (s *Scanner) scanDirectory(ctx context.Context, root string) error {
	s.reportProgress("counting", 0, 0, "Counting files...")
	totalFiles := s.countFiles(root)
	s.reportProgress("counting", totalFiles, totalFiles,
		fmt.Sprintf("Found %d files to analyze", totalFiles))

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	s.results.Workers = workers

	fileChan := make(chan *models.FileInfo, workers*2)
	resultsChan := make(chan *models.AnalysisResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, root, fileChan, resultsChan)
	}

	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go s.collectResults(&collectWg, resultsChan, totalFiles)

	walkErr := s.walker.Walk(root, func(fileInfo *models.FileInfo) error {
		if fileInfo.IsDir || !s.isCandidate(fileInfo) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fileChan <- fileInfo:
			s.mu.Lock()
			s.results.TotalFiles++
			s.mu.Unlock()
			return nil
		}
	})

	close(fileChan)
	wg.Wait()
	close(resultsChan)
	collectWg.Wait()

	return walkErr
}

// isCandidate filters files worth reading at all
func (s *Scanner) isCandidate(fileInfo *models.FileInfo) bool {
	if fileInfo.IsSymlink {
		return false
	}
	if !lang.SupportedExtension(fileInfo.Path) {
		return false
	}
	if fileInfo.Size > s.config.MaxSizeBytes() {
		s.logger.Debug("File too large, skipping",
			zap.String("path", fileInfo.Path),
			zap.Int64("size", fileInfo.Size))
		return false
	}
	return true
}

// countFiles counts candidate files under root
func (s *Scanner) countFiles(root string) int {
	count := 0
	tempWalker := filesystem.NewWalker(s.config, s.logger)
	tempWalker.Walk(root, func(fileInfo *models.FileInfo) error {
		if !fileInfo.IsDir && s.isCandidate(fileInfo) {
			count++
		}
		return nil
	})
	return count
}

// worker processes files from the channel. Each worker owns its own
// engine set: the tree-sitter parser and the fuzzer's rand source are
// not safe for concurrent use.
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, root string,
	fileChan <-chan *models.FileInfo, resultsChan chan<- *models.AnalysisResult) {
	defer wg.Done()

	analyzer := newFileAnalyzer(s.config, s.logger, s.ruleSet)
	for fileInfo := range fileChan {
		select {
		case <-ctx.Done():
			return
		default:
			resultsChan <- s.analyzeOne(ctx, analyzer, fileInfo, root)
		}
	}
}

// analyzeOne reads and analyzes a single file, converting read errors
// into structured error results
func (s *Scanner) analyzeOne(ctx context.Context, analyzer *FileAnalyzer, fileInfo *models.FileInfo, root string) *models.AnalysisResult {
	file, err := filesystem.ReadFile(fileInfo, root)
	if err != nil {
		now := time.Now()
		return &models.AnalysisResult{
			FilePath: fileInfo.Path,
			Start:    now,
			End:      now,
			Error:    err.Error(),
		}
	}
	return analyzer.AnalyzeFile(ctx, file)
}

// collectResults folds per-file results into the project totals with
// progress reporting
func (s *Scanner) collectResults(wg *sync.WaitGroup, resultsChan <-chan *models.AnalysisResult, totalFiles int) {
	defer wg.Done()

	processed := 0
	lastReport := time.Now()

	for result := range resultsChan {
		s.mu.Lock()
		s.results.AddResult(result)
		processed++

		// Report progress every 100ms or every 100 files
		if time.Since(lastReport) > 100*time.Millisecond || processed%100 == 0 {
			s.reportProgress("analyzing", processed, totalFiles, result.FilePath)
			lastReport = time.Now()
		}
		s.mu.Unlock()
	}

	s.reportProgress("analyzing", processed, totalFiles, "Analysis complete")
}

// projectRisk scores the whole run from the folded breakdown
func projectRisk(results *models.ProjectResults) models.RiskAssessment {
	return analysis.AssessRisk(results.Breakdown, results.ThreatsFound())
}
