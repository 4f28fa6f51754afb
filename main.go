// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/command"
	"github.com/tfctl/stepctl/internal/config"
	"github.com/tfctl/stepctl/internal/log"
	"github.com/tfctl/stepctl/internal/version"
)

var ctx = context.Background()

// defaultCacheHours is how long downloaded dumps stay in the cache unless
// cache.hours says otherwise.
const defaultCacheHours = 7 * 24

// valueFlags take the following argument as their value. Any other flag is
// treated as boolean by deduplicateFlags.
var valueFlags = map[string]bool{
	"--attrs": true, "-a": true,
	"--fields": true,
	"--filter": true, "-f": true,
	"--only":    true,
	"--output":  true, "-o": true,
	"--padding": true,
	"--profile": true,
	"--region":  true,
	"--root":    true,
	"--sort":    true, "-s": true,
}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	args = deduplicateFlags(args)
	log.Debugf("args after dedup: args=%v", args)
	return args
}

// processSetOnly expands an @set argument into the entries of the
// <cmd>.<set> config key at its position. Without an @set, <cmd>.defaults is
// expanded right after the command so that explicit flags override it.
func processSetOnly(args []string) []string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args
	}

	set := "defaults"
	insertIdx := 2
	for i := 2; i < len(args); i++ {
		if strings.HasPrefix(args[i], "@") && len(args[i]) > 1 {
			set = args[i][1:]
			insertIdx = i
			args = append(args[:i:i], args[i+1:]...)
			break
		}
	}

	entries, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil {
		log.Debugf("set %s: %v", set, err)
		return args
	}
	return injectConfigSet(args, entries, insertIdx)
}

// injectConfigSet inserts entries, split on whitespace, into args at
// insertIdx.
func injectConfigSet(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags drops every earlier occurrence of a repeated flag, along
// with its value, so the last one wins. "--flag=value" and "--flag value" are
// the same flag. Positional arguments and the "--" terminator onwards are
// kept as they are.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type token struct {
		name string
		args []string
	}

	var tokens []token
	for i := 2; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			tokens = append(tokens, token{args: args[i:]})
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			tokens = append(tokens, token{args: []string{a}})
			continue
		}

		name, _, hasValue := strings.Cut(a, "=")
		t := token{name: name, args: []string{a}}
		if !hasValue && valueFlags[name] && i+1 < len(args) {
			i++
			t.args = append(t.args, args[i])
		}
		tokens = append(tokens, t)
	}

	last := make(map[string]int)
	for i, t := range tokens {
		if t.name != "" {
			last[t.name] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, t := range tokens {
		if t.name != "" && last[t.name] != i {
			continue
		}
		out = append(out, t.args...)
	}
	return out
}

// purgeCache drops cached downloads older than cache.hours.
func purgeCache() {
	hours, err := config.GetInt("cache.hours", defaultCacheHours)
	if err != nil {
		log.Warnf("ignoring cache.hours: %v", err)
		hours = defaultCacheHours
	}

	n, err := cacheutil.Open().Purge(time.Duration(hours) * time.Hour)
	if err != nil {
		log.Debugf("cache purge err: err=%v", err)
		return
	}
	if n > 0 {
		log.Debugf("cache purged: entries=%d", n)
	}
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	purgeCache()

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI
	// handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}
