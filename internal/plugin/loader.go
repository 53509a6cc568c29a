package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LoadStage identifies where in the load pipeline a candidate failed.
type LoadStage string

const (
	StageScan     LoadStage = "scan"
	StageManifest LoadStage = "manifest"
	StageValidate LoadStage = "validate"
	StageSchema   LoadStage = "schema"
	StageVersion  LoadStage = "version"
	StageModule   LoadStage = "module"
	StageCallable LoadStage = "callable"
)

// LoadIssue records why a candidate directory was skipped during a
// scan. Issues are diagnostics, never fatal: discovery always moves
// on to the next candidate.
type LoadIssue struct {
	Dir   string
	Stage LoadStage
	Err   error
}

func (i LoadIssue) String() string {
	return fmt.Sprintf("%s [%s]: %v", i.Dir, i.Stage, i.Err)
}

// Loader scans a plugins root and runs the full load pipeline on each
// candidate directory.
type Loader struct {
	root           string
	runtime        Runtime
	managerVersion string
	log            *zap.Logger
}

func newLoader(root string, rt Runtime, managerVersion string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		root:           root,
		runtime:        rt,
		managerVersion: managerVersion,
		log:            log,
	}
}

// Root returns the plugins root directory being scanned.
func (l *Loader) Root() string {
	return l.root
}

// Discover walks the immediate children of the root, in lexicographic
// order, and loads every plugin candidate. One broken candidate never
// stops the scan: it is skipped, logged, and returned as an issue
// alongside the plugins that did load. A missing root yields an empty
// result.
func (l *Loader) Discover() ([]*Plugin, []LoadIssue) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Debug("plugins root does not exist", zap.String("dir", l.root))
			return nil, nil
		}
		l.log.Warn("cannot read plugins root", zap.String("dir", l.root), zap.Error(err))
		return nil, []LoadIssue{{Dir: l.root, Stage: StageScan, Err: err}}
	}

	if _, err := compiledManifestSchema(); err != nil {
		l.log.Debug("manifest schema unavailable, structural checks skipped", zap.Error(err))
	}

	var plugins []*Plugin
	var issues []LoadIssue
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "__pycache__" {
			continue
		}
		dir := filepath.Join(l.root, name)
		if !entry.IsDir() {
			// Symlinked plugin directories show up as non-dir entries.
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ManifestFileName)); err != nil {
			// A directory without a manifest is not a plugin.
			l.log.Debug("no manifest, skipping", zap.String("dir", dir))
			continue
		}

		p, issue := l.Load(dir)
		if issue != nil {
			l.log.Warn("skipping plugin",
				zap.String("dir", issue.Dir),
				zap.String("stage", string(issue.Stage)),
				zap.Error(issue.Err))
			issues = append(issues, *issue)
			continue
		}
		plugins = append(plugins, p)
	}
	return plugins, issues
}

// Load runs the pipeline on a single candidate directory: manifest
// parse, field validation, structural schema, manager version gate,
// entry module execution, callable lookup. It returns either a ready
// plugin or the issue that stopped it.
func (l *Loader) Load(dir string) (*Plugin, *LoadIssue) {
	m, err := LoadManifestFromDir(dir)
	if err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageManifest, Err: err}
	}
	if err := m.Validate(); err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageValidate, Err: err}
	}
	if err := validateManifestSchema(m); err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageSchema, Err: err}
	}

	if m.MinManagerVersion != "" {
		compatible, verr := CompatibleVersion(m.MinManagerVersion, l.managerVersion)
		if verr != nil {
			// Fail open: a version string nobody can parse never locks
			// a plugin out.
			l.log.Warn("unparseable version in compatibility check",
				zap.String("plugin", m.Name),
				zap.Error(verr))
		}
		if !compatible {
			return nil, &LoadIssue{Dir: dir, Stage: StageVersion, Err: fmt.Errorf(
				"%w: requires %s, running %s", ErrIncompatibleVersion, m.MinManagerVersion, l.managerVersion)}
		}
	}

	modPath, callable, err := m.entryParts()
	if err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageValidate, Err: err}
	}
	mainPath := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(modPath, ".", "/"))+l.runtime.Ext())
	if _, err := os.Stat(mainPath); err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageModule, Err: fmt.Errorf(
			"%w: %s", ErrModuleNotFound, mainPath)}
	}

	module, err := l.runtime.Load(mainPath, dir, m.Name)
	if err != nil {
		return nil, &LoadIssue{Dir: dir, Stage: StageModule, Err: err}
	}
	handler, ok := module.Callable(callable)
	if !ok {
		_ = module.Close()
		return nil, &LoadIssue{Dir: dir, Stage: StageCallable, Err: fmt.Errorf(
			"%w: %s", ErrCallableNotFound, callable)}
	}

	l.log.Debug("loaded plugin",
		zap.String("plugin", m.String()),
		zap.String("dir", dir),
		zap.Int("priority", m.Priority))
	return newPlugin(m, handler, module, l.log), nil
}
