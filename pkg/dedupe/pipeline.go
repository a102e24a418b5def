// Package dedupe finds duplicate files: it groups descriptors by size, then
// fingerprints the members of every size group holding two or more files and
// groups them again by fingerprint.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/facette/natsort"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/group"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/metrics"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
)

// ErrNilDescriptor is returned when the input holds a nil descriptor
var ErrNilDescriptor = errors.New("dedupe: nil file descriptor")

// Collector names, also used as metrics prefixes
const (
	SizeCollector        = "size"
	QuickCheckCollector  = "quickcheck"
	FingerprintCollector = "fingerprint"
)

// Fingerprinter computes content fingerprints. It never fails: unreadable
// files get a unique token. *hash.Computer implements it.
type Fingerprinter interface {
	Compute(ctx context.Context, file *models.FileDescriptor) models.Fingerprint
}

// QuickChecker computes a cheap token that differs for files that cannot be
// equal. *hash.QuickChecker implements it.
type QuickChecker interface {
	Token(ctx context.Context, file *models.FileDescriptor) string
}

// PipelineConfig holds configuration for the pipeline
type PipelineConfig struct {
	// MaxWorkers bounds concurrent hashing calls
	MaxWorkers int
	// Partitions splits the size grouping across goroutines (0 or 1 = sequential)
	Partitions int
	// QuickCheck splits size groups by a prefix hash before fingerprinting
	QuickCheck QuickChecker
	// Verify confirms every fingerprint group byte by byte (nil = trust the digest)
	Verify compare.Comparator
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{MaxWorkers: 5}
}

// Result is the outcome of one pipeline run
type Result struct {
	Report *models.DuplicateReport

	SizeGroups     int // distinct sizes
	CandidateFiles int // files in size groups of two or more
	FilesHashed    int
	Failures       []models.HashFailure
}

// Pipeline runs the two grouping stages
type Pipeline struct {
	fingerprinter Fingerprinter
	registry      *metrics.Registry
	logger        logging.Logger
	formatter     output.Formatter
	progressOut   io.Writer
	config        PipelineConfig
}

// NewPipeline creates a pipeline. registry receives the collector counters.
func NewPipeline(fingerprinter Fingerprinter, registry *metrics.Registry, logger logging.Logger, config PipelineConfig) (*Pipeline, error) {
	if fingerprinter == nil {
		return nil, fmt.Errorf("dedupe: nil fingerprinter")
	}
	if registry == nil {
		return nil, fmt.Errorf("dedupe: nil metrics registry")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}

	return &Pipeline{
		fingerprinter: fingerprinter,
		registry:      registry,
		logger:        logger,
		config:        config,
	}, nil
}

// SetFormatter sets the formatter notified of hashing progress, writing to w
func (p *Pipeline) SetFormatter(formatter output.Formatter, w io.Writer) {
	p.formatter = formatter
	p.progressOut = w
}

// Run finds the duplicate groups among files.
//
// Files of different sizes never share a group, and a size group of one is
// never hashed. A file whose fingerprint could not be computed ends up in no
// group; it is listed in Result.Failures. Run does not stop early: the
// context is only handed to the hashing calls.
func (p *Pipeline) Run(ctx context.Context, files []*models.FileDescriptor) (*Result, error) {
	for i, f := range files {
		if f == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilDescriptor, i)
		}
	}

	result := &Result{Report: &models.DuplicateReport{}}

	// Stage 1: size
	bySize, err := group.ByKey(p.registry, SizeCollector, func(f *models.FileDescriptor) int64 {
		return f.Size()
	})
	if err != nil {
		return nil, err
	}

	var sizes *group.Multimap[int64, *models.FileDescriptor]
	if p.config.Partitions > 1 {
		sizes = bySize.CollectParallel(files, p.config.Partitions)
	} else {
		sizes = bySize.Collect(files)
	}

	candidates := sizes.Groups(2)
	result.SizeGroups = sizes.Len()
	for _, g := range candidates {
		result.CandidateFiles += len(g)
	}

	p.logger.Info(ctx, "size grouping complete", logging.Fields{
		"files":      len(files),
		"sizes":      result.SizeGroups,
		"candidates": result.CandidateFiles,
	})

	// Optional stage: prefix hash
	if p.config.QuickCheck != nil && len(candidates) > 0 {
		candidates, err = p.quickCheck(ctx, candidates)
		if err != nil {
			return nil, err
		}
		p.logger.Debug(ctx, "quick check complete", logging.Fields{"groups": len(candidates)})
	}

	// Stage 2: fingerprint
	groups, failures, hashed, err := p.fingerprint(ctx, candidates)
	if err != nil {
		return nil, err
	}

	if p.config.Verify != nil && len(groups) > 0 {
		var verifyFailures []models.HashFailure
		groups, verifyFailures = p.verify(ctx, groups)
		failures = mergeFailures(failures, verifyFailures)
	}

	result.Report.Groups = groups
	result.Report.Sort()
	result.FilesHashed = hashed
	result.Failures = failures

	p.logger.Info(ctx, "fingerprint grouping complete", logging.Fields{
		"hashed":     hashed,
		"failures":   len(failures),
		"duplicates": len(groups),
	})

	return result, nil
}

// keyed pairs a file with the key computed for it
type keyed[K comparable] struct {
	file *models.FileDescriptor
	key  K
}

// computeKeys runs fn on every member of groups through a bounded pool.
// The result has the shape of groups.
func computeKeys[K comparable](ctx context.Context, groups [][]*models.FileDescriptor, workers int,
	fn func(ctx context.Context, f *models.FileDescriptor) K) [][]keyed[K] {

	out := make([][]keyed[K], len(groups))
	for i, g := range groups {
		out[i] = make([]keyed[K], len(g))
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, g := range groups {
		for j, f := range g {
			eg.Go(func() error {
				out[i][j] = keyed[K]{file: f, key: fn(ctx, f)}
				return nil
			})
		}
	}
	eg.Wait()

	return out
}

// regroup groups each row by key and keeps the groups of two or more
func regroup[K comparable](registry *metrics.Registry, name string, rows [][]keyed[K],
	emit func(key K, files []*models.FileDescriptor)) error {

	c, err := group.New(registry, name,
		func(k keyed[K]) K { return k.key },
		func(k keyed[K]) *models.FileDescriptor { return k.file })
	if err != nil {
		return err
	}

	for _, row := range rows {
		c.Collect(row).Each(func(key K, files []*models.FileDescriptor) {
			if len(files) >= 2 {
				emit(key, files)
			}
		})
	}
	return nil
}

func (p *Pipeline) quickCheck(ctx context.Context, groups [][]*models.FileDescriptor) ([][]*models.FileDescriptor, error) {
	rows := computeKeys(ctx, groups, p.config.MaxWorkers, p.config.QuickCheck.Token)

	var survivors [][]*models.FileDescriptor
	err := regroup(p.registry, QuickCheckCollector, rows, func(_ string, files []*models.FileDescriptor) {
		survivors = append(survivors, files)
	})
	return survivors, err
}

func (p *Pipeline) fingerprint(ctx context.Context, groups [][]*models.FileDescriptor) ([]models.DuplicateGroup, []models.HashFailure, int, error) {
	total := 0
	var totalBytes int64
	for _, g := range groups {
		total += len(g)
		totalBytes += g[0].Size() * int64(len(g))
	}

	var (
		failuresMu sync.Mutex
		failed     = make(map[string]models.HashFailure)
	)
	if fp, ok := p.fingerprinter.(interface {
		SetFailureHandler(func(models.HashFailure))
	}); ok {
		fp.SetFailureHandler(func(failure models.HashFailure) {
			failuresMu.Lock()
			failed[failure.Path] = failure
			failuresMu.Unlock()
		})
		defer fp.SetFailureHandler(nil)
	}

	if p.formatter != nil {
		p.formatter.Start(p.progressOut, total, totalBytes)
	}

	var done atomic.Int32
	compute := func(ctx context.Context, f *models.FileDescriptor) models.Fingerprint {
		fingerprint := p.fingerprinter.Compute(ctx, f)
		if p.formatter != nil {
			update := output.ProgressUpdate{
				Type:        output.EventHashComplete,
				FilePath:    f.Path(),
				Bytes:       f.Size(),
				CurrentFile: int(done.Add(1)),
				TotalFiles:  total,
			}
			failuresMu.Lock()
			if failure, ok := failed[f.Path()]; ok {
				update.Type = output.EventHashError
				update.Error = errors.New(failure.Error)
			}
			failuresMu.Unlock()
			p.formatter.Progress(update)
		}
		return fingerprint
	}

	rows := computeKeys(ctx, groups, p.config.MaxWorkers, compute)

	var duplicates []models.DuplicateGroup
	err := regroup(p.registry, FingerprintCollector, rows, func(key models.Fingerprint, files []*models.FileDescriptor) {
		duplicates = append(duplicates, models.DuplicateGroup{
			Size:        files[0].Size(),
			Fingerprint: key,
			Files:       files,
		})
	})
	if err != nil {
		return nil, nil, 0, err
	}

	failures := make([]models.HashFailure, 0, len(failed))
	for _, failure := range failed {
		failures = append(failures, failure)
	}

	return duplicates, mergeFailures(failures, nil), total, nil
}

// verify splits each group into runs of byte-identical files. A file that
// cannot be compared leaves its group and is reported as a failure.
func (p *Pipeline) verify(ctx context.Context, groups []models.DuplicateGroup) ([]models.DuplicateGroup, []models.HashFailure) {
	confirmed := make([][]models.DuplicateGroup, len(groups))
	failed := make([][]models.HashFailure, len(groups))

	var eg errgroup.Group
	eg.SetLimit(p.config.MaxWorkers)
	for i, g := range groups {
		eg.Go(func() error {
			confirmed[i], failed[i] = p.verifyGroup(ctx, g)
			return nil
		})
	}
	eg.Wait()

	var (
		out      []models.DuplicateGroup
		failures []models.HashFailure
	)
	for i := range groups {
		out = append(out, confirmed[i]...)
		failures = append(failures, failed[i]...)
	}
	return out, failures
}

func (p *Pipeline) verifyGroup(ctx context.Context, g models.DuplicateGroup) ([]models.DuplicateGroup, []models.HashFailure) {
	var (
		runs     [][]*models.FileDescriptor
		failures []models.HashFailure
	)

	fail := func(path, reference string, err error) {
		failures = append(failures, models.HashFailure{
			Path:       path,
			ErrorClass: fmt.Sprintf("%T", err),
			Error:      err.Error(),
		})
		p.logger.Error(ctx, "failed to verify duplicate", err, logging.Fields{
			"path":      path,
			"reference": reference,
		})
	}

	for _, file := range g.Files {
		placed, dropped := false, false

		for i := 0; i < len(runs) && !placed && !dropped; {
			reference := runs[i][0]
			cmp, err := p.config.Verify.Compare(ctx, reference.Path(), file.Path())
			if err != nil {
				bad := file.Path()
				var readErr *compare.ReadError
				if errors.As(err, &readErr) {
					bad = readErr.Path
				}
				if bad == reference.Path() {
					// the next member becomes the reference
					fail(bad, file.Path(), err)
					runs[i] = runs[i][1:]
					if len(runs[i]) == 0 {
						runs = append(runs[:i], runs[i+1:]...)
					}
					continue
				}
				fail(file.Path(), reference.Path(), err)
				dropped = true
				continue
			}

			if cmp.Result == compare.Same {
				runs[i] = append(runs[i], file)
				placed = true
				continue
			}

			p.logger.Warn(ctx, "fingerprint collision", logging.Fields{
				"path":        file.Path(),
				"reference":   reference.Path(),
				"fingerprint": g.Fingerprint.String(),
				"reason":      cmp.Reason,
			})
			i++
		}

		if !placed && !dropped {
			runs = append(runs, []*models.FileDescriptor{file})
		}
	}

	var out []models.DuplicateGroup
	for _, run := range runs {
		if len(run) >= 2 {
			out = append(out, models.DuplicateGroup{Size: g.Size, Fingerprint: g.Fingerprint, Files: run})
		}
	}
	return out, failures
}

// mergeFailures concatenates failure lists, sorted by path
func mergeFailures(a, b []models.HashFailure) []models.HashFailure {
	failures := append(a, b...)
	sort.Slice(failures, func(i, j int) bool {
		return natsort.Compare(failures[i].Path, failures[j].Path)
	})
	return failures
}
