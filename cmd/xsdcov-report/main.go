// Command xsdcov-report compares a corpus of XML documents against an XSD
// schema's defined path universe and prints a coverage report.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcov/coverage"
	"github.com/agentflare-ai/xsdcov/pathenum"
	"github.com/agentflare-ai/xsdcov/schema"
)

func main() {
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: xsdcov-report <xsd> <xml...>")
		os.Exit(1)
	}
	xsdPath := flag.Arg(0)
	xmlPaths := flag.Args()[1:]

	logger := slog.Default()

	model, warnings, err := schema.Load(xsdPath)
	if err != nil {
		logger.Error("failed to load schema", "path", xsdPath, "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("schema load warning", "kind", w.Kind, "message", w.Message)
	}

	universe := pathenum.Enumerate(model, pathenum.Config{})

	usedElements := make(map[pathenum.Path]bool)
	usedAttributes := make(map[pathenum.Path]bool)
	for _, xmlPath := range xmlPaths {
		if err := collectUsedPaths(xmlPath, usedElements, usedAttributes); err != nil {
			logger.Error("failed to read corpus document", "path", xmlPath, "error", err)
			os.Exit(1)
		}
	}

	report := coverage.Compute(universe, usedElements, usedAttributes)

	fmt.Printf("element coverage:   %.1f%% (%d covered, %d unused, %d undefined-used)\n",
		report.Elements.CoveragePercent*100, len(report.Elements.Covered), len(report.Elements.Unused), len(report.Elements.UndefinedUsed))
	fmt.Printf("attribute coverage: %.1f%% (%d covered, %d unused, %d undefined-used)\n",
		report.Attributes.CoveragePercent*100, len(report.Attributes.Covered), len(report.Attributes.Unused), len(report.Attributes.UndefinedUsed))
	fmt.Printf("combined coverage:  %.1f%%\n", report.CombinedPercent*100)

	printPathList("unused element paths", report.Elements.Unused)
	printPathList("unused attribute paths", report.Attributes.Unused)
	printPathList("external-namespace paths", report.External)

	if len(report.TrulyUndefined) > 0 {
		for _, p := range report.TrulyUndefined {
			logger.Warn("truly-undefined path used by corpus", "path", string(p))
		}
		os.Exit(1)
	}
}

// maxListedPaths bounds each per-path list in the printed report so a
// large schema cannot flood the output.
const maxListedPaths = 100

func printPathList(label string, paths []pathenum.Path) {
	if len(paths) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(paths))
	for i, p := range paths {
		if i == maxListedPaths {
			fmt.Printf("  ... and %d more\n", len(paths)-maxListedPaths)
			break
		}
		fmt.Printf("  %s\n", p)
	}
}

// collectUsedPaths reads the XML document at path and records every
// element and attribute path it touches, using the same Path encoding the
// Path Enumerator uses so the two sides compare directly.
func collectUsedPaths(path string, usedElements, usedAttributes map[pathenum.Path]bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	doc, err := xmldom.Decode(file)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	root := doc.DocumentElement()
	if root == nil {
		return fmt.Errorf("%s has no document element", path)
	}

	walk(root, pathenum.Root(string(root.LocalName())), usedElements, usedAttributes)
	return nil
}

func walk(elem xmldom.Element, path pathenum.Path, usedElements, usedAttributes map[pathenum.Path]bool) {
	usedElements[path] = true

	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		node := attrs.Item(i)
		if node == nil {
			continue
		}
		attr, ok := node.(xmldom.Attr)
		if !ok {
			continue
		}
		usedAttributes[pathenum.Attribute(path, string(attr.LocalName()))] = true
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := pathenum.Element(path, string(child.LocalName()))
		walk(child, childPath, usedElements, usedAttributes)
	}
}
