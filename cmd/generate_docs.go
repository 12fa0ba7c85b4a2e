package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Write a markdown reference of the MCP tools served by "calendart serve".
The reference is built from the registered tool definitions. Tools that
change calendars are marked; they are only available with --yolo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			read, err := registeredTools(false)
			if err != nil {
				return err
			}
			all, err := registeredTools(true)
			if err != nil {
				return err
			}
			sections := buildDocSections(all, read)

			if outputFile == "" {
				return renderToolDocs(cmd.OutOrStdout(), sections)
			}
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outputFile, err)
			}
			if err := renderToolDocs(f, sections); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// registeredTools introspects the tool set. No Google request is sent.
func registeredTools(allowWrites bool) ([]mcp.Tool, error) {
	sc := server.NewServerContext(context.Background(), server.Options{AllowWrites: allowWrites})
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("calendart", version, mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	return tools, nil
}

type docSection struct {
	Title  string
	Anchor string
	Tools  []toolDoc
}

type toolDoc struct {
	Name        string
	Description string
	Write       bool
	Args        []argDoc
}

type argDoc struct {
	Name     string
	Required bool
	Text     string
}

// buildDocSections groups all by the prefix of the tool name. Tools absent
// from readOnly are marked as write operations.
func buildDocSections(all, readOnly []mcp.Tool) []docSection {
	readNames := make(map[string]bool, len(readOnly))
	for _, t := range readOnly {
		readNames[t.Name] = true
	}

	byTitle := map[string][]toolDoc{}
	for _, t := range all {
		title := toolCategory(t.Name)
		byTitle[title] = append(byTitle[title], toolDoc{
			Name:        t.Name,
			Description: t.Description,
			Write:       readOnly != nil && !readNames[t.Name],
			Args:        toolArgs(t),
		})
	}

	sections := make([]docSection, 0, len(byTitle))
	for title, docs := range byTitle {
		slices.SortFunc(docs, func(a, b toolDoc) int { return strings.Compare(a.Name, b.Name) })
		sections = append(sections, docSection{
			Title:  title,
			Anchor: strings.ToLower(strings.ReplaceAll(title, " ", "-")),
			Tools:  docs,
		})
	}
	slices.SortFunc(sections, func(a, b docSection) int { return strings.Compare(a.Title, b.Title) })
	return sections
}

func toolCategory(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "gmail":
		return "Gmail Tools"
	case "calendar":
		return "Google Calendar Tools"
	}
	return "Other"
}

func toolArgs(t mcp.Tool) []argDoc {
	args := make([]argDoc, 0, len(t.InputSchema.Properties))
	for name, raw := range t.InputSchema.Properties {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text, _ := prop["description"].(string)
		if text == "" {
			typ, _ := prop["type"].(string)
			if typ == "" {
				typ = "any"
			}
			text = typ + " parameter"
		}
		args = append(args, argDoc{
			Name:     name,
			Required: slices.Contains(t.InputSchema.Required, name),
			Text:     text,
		})
	}
	slices.SortFunc(args, func(a, b argDoc) int { return strings.Compare(a.Name, b.Name) })
	return args
}

var toolDocsTemplate = template.Must(template.New("tools").Parse(`# MCP Tools Reference

This document lists the tools available when running calendart as an MCP server.

**Note:** This documentation is generated from the tool definitions by ` + "`calendart generate-docs`" + `.

## Table of Contents

{{range .}}- [{{.Title}}](#{{.Anchor}})
{{end}}
## Write Operations

Tools marked *write* create or change events. They are only registered when the server is started with ` + "`--yolo`" + `.
{{range .}}
## {{.Title}}
{{range .Tools}}
### {{.Name}}{{if .Write}} (write){{end}}
{{if .Description}}
{{.Description}}
{{end}}{{if .Args}}
**Arguments:**
{{range .Args}}- ` + "`{{.Name}}`" + ` ({{if .Required}}required{{else}}optional{{end}}): {{.Text}}
{{end}}{{end}}{{end}}{{end}}`))

func renderToolDocs(w io.Writer, sections []docSection) error {
	if err := toolDocsTemplate.Execute(w, sections); err != nil {
		return fmt.Errorf("failed to render tool documentation: %w", err)
	}
	return nil
}
