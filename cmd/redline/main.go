// Command redline inspects and repairs the structure of word-processing
// packages: it resolves tracked changes, merges duplicate numbering
// definitions, and collects orphaned numbering parts.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/antchfx/xmlquery"
	"github.com/fatih/color"

	"github.com/jslattery/go-redline/pkg/redline"
	"github.com/jslattery/go-redline/pkg/redline/wml"
)

const version = "0.2.0"

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	headColor = color.New(color.Bold)
)

// CLI defines the command-line interface for redline.
var CLI struct {
	Config   string `help:"Path to TOML config file" type:"existingfile"`
	LogLevel string `help:"Log verbosity (debug, info, warn, error, off)"`
	Strict   bool   `help:"Fail on malformed parts instead of skipping them"`

	Accept      AcceptCmd      `cmd:"" help:"Accept tracked changes in a document"`
	Consolidate ConsolidateCmd `cmd:"" help:"Merge duplicate numbering definitions"`
	GC          GCCmd          `cmd:"" name:"gc" help:"Remove numbering definitions nothing references"`
	Inspect     InspectCmd     `cmd:"" help:"Show package structure without modifying it"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("redline"),
		kong.Description("Structural repair tool for DOCX packages."),
		kong.UsageOnError(),
	)

	config, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redline: %v\n", err)
		os.Exit(1)
	}
	redline.SetGlobalConfig(config)

	if err := ctx.Run(config); err != nil {
		fmt.Fprintf(os.Stderr, "redline: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig layers the config file and command-line flags over the
// environment-derived defaults.
func buildConfig() (*redline.Config, error) {
	config := redline.ConfigFromEnvironment()
	if CLI.Config != "" {
		fileConfig, err := redline.LoadConfigFile(CLI.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}
	if CLI.LogLevel != "" {
		config.LogLevel = CLI.LogLevel
	}
	if CLI.Strict {
		config.Strict = true
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func outputPath(in, out string) string {
	if out != "" {
		return out
	}
	return in
}

// AcceptCmd accepts tracked changes in a document.
type AcceptCmd struct {
	Path string `arg:"" help:"Path to DOCX file" type:"existingfile"`
	Out  string `short:"o" help:"Output path (defaults to in-place)" type:"path"`

	Insertions bool `default:"true" negatable:"" help:"Resolve insertions and move destinations"`
	Deletions  bool `default:"true" negatable:"" help:"Resolve deletions and move sources"`
	Moves      bool `default:"true" negatable:"" help:"Resolve move ranges"`
	Formatting bool `default:"true" negatable:"" help:"Drop formatting-change records"`
}

func (c *AcceptCmd) Run(config *redline.Config) error {
	doc, err := redline.OpenFile(c.Path, config)
	if err != nil {
		return err
	}

	opts := redline.RevisionOptions{
		Insertions: c.Insertions,
		Deletions:  c.Deletions,
		Moves:      c.Moves,
		Formatting: c.Formatting,
	}
	if !opts.Any() {
		return fmt.Errorf("all revision categories disabled, nothing to do")
	}

	result, err := doc.AcceptRevisions(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Accepted revisions in %s\n", c.Path)
	fmt.Printf("  Unwrapped: %d\n", result.Unwrapped)
	fmt.Printf("  Removed: %d\n", result.Removed)
	fmt.Printf("  Metadata cleared: %d\n", result.MetadataCleared)
	if result.RemappedEmbeds > 0 {
		fmt.Printf("  Remapped embeds: %d\n", result.RemappedEmbeds)
	}

	if !result.Changed() {
		okColor.Println("No tracked changes found.")
		return nil
	}
	return saveAndReport(doc, outputPath(c.Path, c.Out))
}

// ConsolidateCmd merges duplicate numbering definitions.
type ConsolidateCmd struct {
	Path    string `arg:"" help:"Path to DOCX file" type:"existingfile"`
	Out     string `short:"o" help:"Output path (defaults to in-place)" type:"path"`
	Protect []int  `help:"Definition ids to exclude from merging"`
}

func (c *ConsolidateCmd) Run(config *redline.Config) error {
	doc, err := redline.OpenFile(c.Path, config)
	if err != nil {
		return err
	}

	result, err := doc.Consolidate(c.Protect...)
	if err != nil {
		return err
	}

	fmt.Printf("Consolidated numbering in %s\n", c.Path)
	fmt.Printf("  Duplicate groups: %d\n", result.DuplicateGroups)
	fmt.Printf("  Definitions removed: %d\n", result.RemovedDefinitions)
	fmt.Printf("  Instances remapped: %d\n", result.RemappedInstances)

	if result.RemovedDefinitions == 0 {
		okColor.Println("No duplicate definitions found.")
		return nil
	}
	return saveAndReport(doc, outputPath(c.Path, c.Out))
}

// GCCmd removes numbering definitions nothing references.
type GCCmd struct {
	Path string `arg:"" help:"Path to DOCX file" type:"existingfile"`
	Out  string `short:"o" help:"Output path (defaults to in-place)" type:"path"`
}

func (c *GCCmd) Run(config *redline.Config) error {
	doc, err := redline.OpenFile(c.Path, config)
	if err != nil {
		return err
	}

	result, err := doc.CollectGarbage()
	if err != nil {
		return err
	}

	fmt.Printf("Collected garbage in %s\n", c.Path)
	fmt.Printf("  Instances removed: %d\n", result.InstancesRemoved)
	fmt.Printf("  Definitions removed: %d\n", result.DefinitionsRemoved)
	fmt.Printf("  Picture bullets removed: %d\n", result.BulletsRemoved)
	fmt.Printf("  Relationships removed: %d\n", result.RelationshipsRemoved)
	for _, part := range result.DroppedParts {
		fmt.Printf("  Dropped part: %s\n", part)
	}

	if !result.Changed() {
		okColor.Println("Nothing to collect.")
		return nil
	}
	return saveAndReport(doc, outputPath(c.Path, c.Out))
}

// InspectCmd shows package structure without modifying it.
type InspectCmd struct {
	Path  string `arg:"" help:"Path to DOCX file" type:"existingfile"`
	Part  string `default:"word/document.xml" help:"Part to query with --xpath"`
	XPath string `help:"XPath query to run against the part"`
}

func (c *InspectCmd) Run(config *redline.Config) error {
	doc, err := redline.OpenFile(c.Path, config)
	if err != nil {
		return err
	}

	if c.XPath != "" {
		return c.query(doc)
	}

	headColor.Printf("Package: %s\n", c.Path)
	fmt.Println()

	fmt.Println("Parts:")
	for _, name := range doc.PartNames() {
		content, _ := doc.PartBytes(name)
		marker := " "
		if redline.IsReachablePart(name) {
			marker = "*"
		}
		fmt.Printf("  %s %s (%d bytes)\n", marker, name, len(content))
	}
	fmt.Println()

	numbering, err := doc.Numbering()
	if err != nil {
		return err
	}
	fmt.Println("Numbering:")
	fmt.Printf("  Definitions: %d\n", len(numbering.Abstracts))
	fmt.Printf("  Instances: %d\n", len(numbering.Instances))
	fmt.Printf("  Picture bullets: %d\n", len(numbering.Bullets))

	used := doc.UsedNumberingIDs()
	var orphans []int
	for id := range numbering.Instances {
		if !used[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Ints(orphans)
	if len(orphans) > 0 {
		warnColor.Printf("  Unreferenced instances: %v\n", orphans)
	}

	revisions := countRevisions(doc)
	fmt.Println()
	if revisions > 0 {
		warnColor.Printf("Tracked changes: %d revision elements\n", revisions)
	} else {
		okColor.Println("Tracked changes: none")
	}
	return nil
}

// query runs the XPath expression against one part and prints each match.
func (c *InspectCmd) query(doc *redline.Document) error {
	content, ok := doc.PartBytes(c.Part)
	if !ok {
		return fmt.Errorf("part not found: %s", c.Part)
	}
	root, err := xmlquery.Parse(strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.Part, err)
	}
	nodes, err := xmlquery.QueryAll(root, c.XPath)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	for _, node := range nodes {
		fmt.Println(node.OutputXML(true))
	}
	fmt.Printf("\n%d match(es)\n", len(nodes))
	return nil
}

func countRevisions(doc *redline.Document) int {
	count := 0
	for _, name := range doc.PartNames() {
		if !redline.IsReachablePart(name) {
			continue
		}
		tree, err := doc.Part(name)
		if err != nil {
			continue
		}
		tree.Walk(func(n *wml.Node) bool {
			if redline.IsRevisionTag(n.Tag) {
				count++
			}
			return true
		})
	}
	return count
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(config *redline.Config) error {
	fmt.Printf("redline v%s\n", version)
	return nil
}

func saveAndReport(doc *redline.Document, path string) error {
	if err := doc.SaveFile(path); err != nil {
		return err
	}
	okColor.Printf("Wrote %s\n", path)
	return nil
}
