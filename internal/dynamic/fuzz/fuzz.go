// Package fuzz feeds a target script random and injection-shaped
// inputs and records crashes and suspicious runtime behavior.
package fuzz

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/dynamic/sandbox"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// injectionPayloads are classic command and SQL injection shapes.
var injectionPayloads = []string{
	"; ls",
	"| cat /etc/passwd",
	"& whoami",
	"`id`",
	"$(whoami)",
	"\"> /tmp/test",
	"' || 1=1 --",
	"; rm -rf /",
	"| nc -l 1234",
}

const randomCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789;|&><'\"` \n\t"

var crashLineRe = regexp.MustCompile(`File "[^"]+", line (\d+)`)

// Fuzzer runs a Python target repeatedly under the sandbox executor.
type Fuzzer struct {
	exec   *sandbox.Executor
	cfg    config.DynamicConfig
	logger *zap.Logger
	rng    *rand.Rand
}

// NewFuzzer creates a fuzzer with its own random source.
func NewFuzzer(exec *sandbox.Executor, cfg config.DynamicConfig, logger *zap.Logger, seed int64) *Fuzzer {
	return &Fuzzer{
		exec:   exec,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Fuzz runs up to twice the configured iteration count: the configured
// number of random inputs plus the injection catalog, capped at 2N.
func (f *Fuzzer) Fuzz(ctx context.Context, target string) []models.FuzzCase {
	n := f.cfg.FuzzIterations
	if n <= 0 {
		return nil
	}

	inputs := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		inputs = append(inputs, f.randomInput())
	}
	for _, payload := range injectionPayloads {
		if len(inputs) >= 2*n {
			break
		}
		inputs = append(inputs, payload)
	}

	var cases []models.FuzzCase
	for _, input := range inputs {
		if ctx.Err() != nil {
			break
		}
		cases = append(cases, f.runCase(ctx, target, input))
	}

	crashed := 0
	for _, c := range cases {
		if c.Crashed {
			crashed++
		}
	}
	f.logger.Debug("Fuzzing finished",
		zap.String("target", target),
		zap.Int("cases", len(cases)),
		zap.Int("crashed", crashed))
	return cases
}

func (f *Fuzzer) runCase(ctx context.Context, target, input string) models.FuzzCase {
	fc := models.FuzzCase{Input: input}

	result, err := f.exec.Run(ctx, target, sandbox.DefaultHookSet(), input)
	if err != nil {
		fc.Crashed = true
		fc.ReturnCode = -1
		fc.Stderr = err.Error()
		return fc
	}

	fc.ReturnCode = result.ReturnCode
	fc.TimedOut = result.TimedOut
	fc.Stderr = result.Stderr
	fc.Crashed = isCrash(result.ReturnCode, result.TimedOut, result.Stderr)
	fc.CrashLines = crashLines(result.Stderr)
	fc.NetworkActivities = sandbox.ExtractNetwork(result.Events)
	return fc
}

// randomInput produces 1 to 100 characters from a charset biased
// toward shell metacharacters.
func (f *Fuzzer) randomInput() string {
	length := 1 + f.rng.Intn(100)
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(randomCharset[f.rng.Intn(len(randomCharset))])
	}
	return b.String()
}

// isCrash treats nonzero exits and interpreter error output as
// crashes; a timeout alone is not a crash.
func isCrash(returnCode int, timedOut bool, stderr string) bool {
	if returnCode != 0 && !timedOut {
		return true
	}
	return strings.Contains(stderr, "Traceback") || strings.Contains(stderr, "Error")
}

// crashLines pulls source line numbers out of a Python traceback.
func crashLines(stderr string) []int {
	var lines []int
	seen := make(map[int]struct{})
	for _, m := range crashLineRe.FindAllStringSubmatch(stderr, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		lines = append(lines, n)
	}
	return lines
}
