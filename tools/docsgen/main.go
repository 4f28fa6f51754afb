// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docsgen writes the markdown and tldr pages of every stepctl
// subcommand from the live command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/command"
)

type Flag struct {
	ID          string
	Syntax      string
	Description string
	Default     string
}

type TemplateData struct {
	ID        string
	IDUpper   string
	Short     string
	Usage     string
	Flags     []Flag
	Date      string
	Version   string
	UsageList []string
}

type Outputs struct {
	Template *template.Template
	Folder   string
	Prefix   string
	Suffix   string
}

var markdownTemplate = template.Must(template.New("md").Parse(`# stepctl {{.ID}}

{{.Short}}

## Usage

` + "```" + `
{{range .UsageList}}{{.}}
{{end}}` + "```" + `

## Flags

| Flag | Description | Default |
|---|---|---|
{{range .Flags}}| ` + "`{{.Syntax}}`" + ` | {{.Description}} | {{.Default}} |
{{end}}
_Generated {{.Date}} for version {{.Version}}._
`))

var tldrTemplate = template.Must(template.New("tldr").Parse(`# stepctl {{.ID}}

> {{.Short}}.
{{range .UsageList}}
- {{$.Short}}:

` + "`{{.}}`" + `
{{end}}`))

// flagSyntax renders "--name, -n" for a flag.
func flagSyntax(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if len(n) == 1 {
			out = append(out, "-"+n)
		} else {
			out = append(out, "--"+n)
		}
	}
	return strings.Join(out, ", ")
}

// describe pulls usage and default text from flags that carry them.
func describe(f cli.Flag) Flag {
	out := Flag{ID: f.Names()[0], Syntax: flagSyntax(f.Names())}
	if u, ok := f.(interface{ GetUsage() string }); ok {
		out.Description = u.GetUsage()
	}
	if d, ok := f.(interface{ GetValue() string }); ok {
		out.Default = d.GetValue()
	}
	return out
}

func templateData(cmd *cli.Command, version string) TemplateData {
	data := TemplateData{
		ID:        cmd.Name,
		IDUpper:   strings.ToUpper(cmd.Name),
		Short:     cmd.Usage,
		Usage:     cmd.UsageText,
		Date:      time.Now().Format("January 2, 2006"),
		Version:   version,
		UsageList: strings.Split(strings.TrimSpace(cmd.UsageText), "\n"),
	}
	for _, f := range cmd.Flags {
		if bf, ok := f.(*cli.BoolFlag); ok && bf.Hidden {
			continue
		}
		data.Flags = append(data.Flags, describe(f))
	}
	return data
}

// generate writes one page per subcommand and output type under docs.
func generate(ctx context.Context, docs string, version string) ([]string, error) {
	app, err := command.InitApp(ctx, []string{"stepctl"})
	if err != nil {
		return nil, err
	}

	types := []Outputs{
		{Template: markdownTemplate, Folder: filepath.Join(docs, "commands"), Suffix: ".md"},
		{Template: tldrTemplate, Folder: filepath.Join(docs, "tldr"), Prefix: "stepctl-", Suffix: ".md"},
	}

	var written []string
	for _, sub := range app.Commands {
		data := templateData(sub, version)

		for _, t := range types {
			if err := os.MkdirAll(t.Folder, 0o755); err != nil {
				return written, err
			}

			path := filepath.Join(t.Folder, t.Prefix+sub.Name+t.Suffix)
			file, err := os.Create(path)
			if err != nil {
				return written, err
			}
			err = t.Template.Execute(file, data)
			file.Close()
			if err != nil {
				return written, fmt.Errorf("failed to render %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}

	written, err := generate(context.Background(), os.Args[1], getVersion())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, p := range written {
		fmt.Println("Generated", p)
	}
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
