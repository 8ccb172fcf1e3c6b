// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the unjumble CLI and IPC server.

Unjumble finds every dictionary word that can be spelled from a set of
letters, using each letter at most as many times as it appears. Words are
indexed by the product of one prime per letter, so "can this word be formed"
is a single divisibility test.

# Usage

Start an interactive session (an empty line quits):

	unjumble
	> trace
	cat, act, a, car, art

Answer one or more queries and exit. The exit code is 2 when a query has
characters outside a-z:

	unjumble query trace dog

Serve msgpack requests on stdin/stdout for editors and other programs:

	unjumble serve

Rebuild the index cache after changing word lists:

	unjumble build

# Word lists

Word lists are plain text files with one word per line, read from the
directory set by [dict] words_dir or the --words flag. Every file matching
the doublestar globs in [dict] patterns (all files by default) is indexed in
lexical path order.

# Configuration

The config file lives in the user config dir and is created with defaults
on first run:

	[dict]
	words_dir = "words"
	single_letter_words = ["a", "i"]
	dedupe = true
	strategy = "trie"

	[cache]
	enabled = true
	path = ""
	backend = "auto"

	[server]
	max_query_len = 64
	max_results = 0
	hot_cache = 1024
	watch_config = true

	[cli]
	prompt = "> "
	separator = ", "

The server reloads its section when the file changes.

# Flags

	--config string   Path to a custom config file
	-d, --debug       Toggle debug mode
	--words string    Directory containing the word lists
	--no-cache        Build the index from the word lists and skip the cache
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/unjumble/cmd/unjumble/cmd"
	"github.com/charmbracelet/log"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()
	if err := cmd.Execute(context.Background()); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		log.Error(err)
		os.Exit(1)
	}
}
