// Command xsdcov-generate reads an XSD schema and writes a corpus of XML
// documents exercising it, using either the Set-Cover or the Pairwise
// generation strategy.
package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"aqwari.net/xml/xmltree"

	"github.com/agentflare-ai/xsdcov/builder"
	"github.com/agentflare-ai/xsdcov/corpus"
	"github.com/agentflare-ai/xsdcov/pairwise"
	"github.com/agentflare-ai/xsdcov/pathenum"
	"github.com/agentflare-ai/xsdcov/schema"
	"github.com/agentflare-ai/xsdcov/selector"
)

func main() {
	var (
		outDir         = flag.String("o", "corpus", "output directory for generated XML files")
		prefix         = flag.String("prefix", "test", "filename prefix for generated documents")
		strategy       = flag.String("strategy", "setcover", "generation strategy: setcover|pairwise")
		maxDepth       = flag.Int("max-depth", 10, "max traversal/generation depth")
		maxFiles       = flag.Int("max-files", 50, "max files the set-cover strategy will select")
		targetCoverage = flag.Float64("target-coverage", 0.95, "target path coverage fraction for set-cover")
		namespace      = flag.String("namespace", "", "override the default namespace written on generated roots (pairwise strategy only; set-cover roots always carry the schema's target namespace)")
		maxPatterns    = flag.Int("max-patterns", 200, "max patterns the pairwise strategy will generate")
		seed           = flag.Int64("random-seed", 1, "seed for the pairwise candidate sampler")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: xsdcov-generate <xsd> -o <out> [flags]")
		os.Exit(1)
	}
	xsdPath := flag.Arg(0)

	logger := slog.Default()

	model, warnings, err := schema.Load(xsdPath)
	if err != nil {
		logger.Error("failed to load schema", "path", xsdPath, "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("schema load warning", "kind", w.Kind, "message", w.Message)
	}

	universe := pathenum.Enumerate(model, pathenum.Config{MaxDepth: *maxDepth})
	for _, w := range universe.Warnings {
		logger.Warn("enumeration warning", "kind", w.Kind, "message", w.Message)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	var snippets []*corpus.XMLSnippet
	switch *strategy {
	case "pairwise":
		snippets, err = generatePairwise(model, universe, builder.Config{Namespace: *namespace}, pairwise.Config{
			MaxPatterns: *maxPatterns,
			Seed:        *seed,
		})
	case "setcover":
		snippets, err = generateSetCover(model, universe, selector.Config{
			Theta:       *targetCoverage,
			MaxFiles:    *maxFiles,
			MaxGenDepth: *maxDepth,
		})
	default:
		fmt.Fprintf(os.Stderr, "unknown strategy %q\n", *strategy)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("generation failed", "strategy", *strategy, "error", err)
		os.Exit(1)
	}

	for i, snippet := range snippets {
		name := fmt.Sprintf("%s_%03d.xml", *prefix, i+1)
		if *strategy == "setcover" {
			name = fmt.Sprintf("%s_%03d_depth%d.xml", *prefix, i+1, snippet.Depth)
		}
		dest := filepath.Join(*outDir, name)
		data := append([]byte(xml.Header), xmltree.MarshalIndent(snippet.Root, "", "  ")...)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			logger.Error("failed to write candidate", "path", dest, "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("wrote %d document(s) to %s\n", len(snippets), *outDir)
}

func generateSetCover(model *schema.Model, universe *pathenum.Result, cfg selector.Config) ([]*corpus.XMLSnippet, error) {
	result, err := selector.Select(model, universe, cfg)
	if err != nil {
		return nil, err
	}
	fmt.Printf("set-cover coverage: %.1f%% (target reached: %v)\n", result.Coverage*100, result.TargetReached)
	return result.Selected, nil
}

func generatePairwise(model *schema.Model, universe *pathenum.Result, bcfg builder.Config, cfg pairwise.Config) ([]*corpus.XMLSnippet, error) {
	array := pairwise.Generate(universe, cfg)
	fmt.Printf("pairwise coverage: %.1f%% over %d patterns\n", array.Coverage*100, len(array.Patterns))

	root := firstRoot(model)
	if root == "" {
		return nil, fmt.Errorf("schema has no global elements to root a document at")
	}
	b := builder.New(model, universe, bcfg)

	snippets := make([]*corpus.XMLSnippet, 0, len(array.Patterns))
	for _, pattern := range array.Patterns {
		snippet, err := b.Build(root, builder.Params{Assignment: pattern.Assignments})
		if err != nil {
			return nil, err
		}
		snippet.SourcePattern = pattern
		snippets = append(snippets, snippet)
	}
	return snippets, nil
}

func firstRoot(model *schema.Model) string {
	names := make([]string, 0, len(model.GlobalElements))
	for name := range model.GlobalElements {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
