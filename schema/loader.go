package schema

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agentflare-ai/go-xmldom"
)

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BaseDir    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Loader resolves xsd:import/xsd:include directives and caches every
// reachable named type. A failure to load an imported schema is a
// warning, not fatal.
type Loader struct {
	baseDir    string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	loaded  map[string]*Model // absolute location -> parsed document model
	loading map[string]bool   // cycle guard
}

// NewLoader creates a Loader with the given configuration.
func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{
		baseDir:    cfg.BaseDir,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		loaded:     make(map[string]*Model),
		loading:    make(map[string]bool),
	}
	if l.httpClient == nil {
		l.httpClient = http.DefaultClient
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load loads the schema at location and recursively follows its
// import/include graph, returning a single combined Model plus any
// non-fatal warnings accumulated along the way. Only a load/parse failure
// of the root schema is fatal (*LoadError); a failed import is logged and
// skipped.
func (l *Loader) Load(location string) (*Model, []Warning, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var warnings []Warning
	root, err := l.loadRecursive(location, &warnings)
	if err != nil {
		return nil, warnings, &LoadError{Location: location, Err: err}
	}

	combined := newModel()
	combined.TargetNamespace = root.TargetNamespace
	for loc := range l.loaded {
		combined.ImportedSchemas[loc] = struct{}{}
	}
	// Merge every reachable document's declarations into one namespace
	// view. Import and include are treated uniformly for caching
	// purposes, even though only include shares a namespace with the
	// root in strict XSD semantics.
	for _, m := range l.loaded {
		mergeInto(combined, m)
	}

	return combined, warnings, nil
}

func mergeInto(dst, src *Model) {
	for name, t := range src.TypeCache {
		if _, exists := dst.TypeCache[name]; !exists {
			dst.TypeCache[name] = t
		}
	}
	for name, e := range src.GlobalElements {
		if _, exists := dst.GlobalElements[name]; !exists {
			dst.GlobalElements[name] = e
		}
	}
	for name, ag := range src.AttributeGroups {
		if _, exists := dst.AttributeGroups[name]; !exists {
			dst.AttributeGroups[name] = ag
		}
	}
	for name, g := range src.Groups {
		if _, exists := dst.Groups[name]; !exists {
			dst.Groups[name] = g
		}
	}
}

func (l *Loader) loadRecursive(location string, warnings *[]Warning) (*Model, error) {
	abs, err := l.resolveLocation(location)
	if err != nil {
		return nil, fmt.Errorf("resolving location %s: %w", location, err)
	}
	if m, ok := l.loaded[abs]; ok {
		return m, nil
	}
	if l.loading[abs] {
		return nil, fmt.Errorf("circular schema dependency at %s", abs)
	}
	l.loading[abs] = true
	defer delete(l.loading, abs)

	doc, err := l.loadDocument(abs)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", abs, err)
	}
	model, parseWarnings, err := Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", abs, err)
	}
	*warnings = append(*warnings, parseWarnings...)
	l.loaded[abs] = model

	for _, imp := range model.Imports {
		if imp.SchemaLocation == "" {
			continue
		}
		childLoc := l.resolveRelative(imp.SchemaLocation, abs)
		if _, err := l.loadRecursive(childLoc, warnings); err != nil {
			kind := "import"
			if imp.IsInclude {
				kind = "include"
			}
			l.logger.Warn("failed to resolve schema reference",
				"kind", kind, "location", imp.SchemaLocation, "error", err)
			*warnings = append(*warnings, Warning{
				Kind:    WarnImportResolution,
				Message: fmt.Sprintf("%s %q from %s: %v", kind, imp.SchemaLocation, abs, err),
			})
		}
	}

	return model, nil
}

func (l *Loader) resolveLocation(location string) (string, error) {
	if filepath.IsAbs(location) {
		return location, nil
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location, nil
	}
	if l.baseDir != "" {
		return filepath.Abs(filepath.Join(l.baseDir, location))
	}
	return filepath.Abs(location)
}

func (l *Loader) resolveRelative(relative, base string) string {
	if filepath.IsAbs(relative) {
		return relative
	}
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return base[:strings.LastIndex(base, "/")+1] + relative
	}
	return filepath.Join(filepath.Dir(base), relative)
}

func (l *Loader) loadDocument(location string) (xmldom.Document, error) {
	var reader io.ReadCloser
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		resp, err := l.httpClient.Get(location)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, location)
		}
		reader = resp.Body
	} else {
		file, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", location, err)
		}
		reader = file
	}
	defer reader.Close()

	doc, err := xmldom.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return doc, nil
}

// Load is a package-level convenience wrapping NewLoader for the common
// case of loading from a base directory derived from the file itself.
func Load(path string) (*Model, []Warning, error) {
	l := NewLoader(LoaderConfig{BaseDir: filepath.Dir(path)})
	return l.Load(filepath.Base(path))
}
