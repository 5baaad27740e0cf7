// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program tmi is a command-line utility for inspecting Twitch-style chat
// protocol messages.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/tmi"
	"github.com/creachadair/tmi/wire"
)

var parseFlags struct {
	Strict bool `flag:"strict,Report an error for lines that do not decode"`
}

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Help: `Utilities for inspecting Twitch-style chat protocol messages.

Each non-flag argument is treated as one raw protocol line; with no
arguments, lines are read from stdin.`,
		Commands: []*command.C{
			{
				Name:  "parse",
				Usage: "[line ...]",
				Help: `Decode raw protocol lines into typed updates.

Each line that decodes to a known message kind is printed as a JSON
object on a line of its own. Lines that do not decode are silently
skipped unless -strict is set.`,
				SetFlags: command.Flags(flax.MustBind, &parseFlags),
				Run:      runParse,
			},
			{
				Name:  "tags",
				Usage: "[line ...]",
				Help:  "Print the attribute tags of raw protocol lines, one tag per line.",
				Run:   runTags,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func runParse(env *command.Env) error {
	return eachLine(env, func(line []byte) error {
		msg, err := decodeLine(line)
		if err != nil {
			if parseFlags.Strict {
				return fmt.Errorf("line %q: %w", line, err)
			}
			return nil
		}
		bits, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		fmt.Println(string(bits))
		return nil
	})
}

func decodeLine(line []byte) (tmi.Message, error) {
	raw, err := wire.Parse(line)
	if err != nil {
		return nil, err
	}
	return tmi.Decode(raw)
}

func runTags(env *command.Env) error {
	return eachLine(env, func(line []byte) error {
		raw, err := wire.Parse(line)
		if err != nil {
			return fmt.Errorf("line %q: %w", line, err)
		}
		for name, value := range raw.Tags() {
			fmt.Printf("%s\t%s\n", name, wire.UnescapeTag(value))
		}
		return nil
	})
}

// eachLine calls f for the argument lines of env, or if there are none,
// for each line read from stdin.
func eachLine(env *command.Env, f func([]byte) error) error {
	if len(env.Args) != 0 {
		for _, arg := range env.Args {
			if err := f([]byte(arg)); err != nil {
				return err
			}
		}
		return nil
	}
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if err := f(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}
