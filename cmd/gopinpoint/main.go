/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command gopinpoint inspects, formats, times and presents pinpoint slide scripts.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"gopinpoint/internal/config"
	"gopinpoint/internal/crash"
	applog "gopinpoint/internal/log"
	"gopinpoint/internal/version"
)

// CLI defines the command-line interface.
var CLI struct {
	Inspect InspectCmd `cmd:"" help:"Parse a script and print its slides"`
	Fmt     FmtCmd     `cmd:"" help:"Print or rewrite a script in normalized form"`
	Timing  TimingCmd  `cmd:"" help:"Show talk length and per-slide time budgets"`
	Present PresentCmd `cmd:"" help:"Present a script in the terminal" default:"withargs"`
	History HistoryCmd `cmd:"" help:"List rehearsals, snapshots and backups of a script"`
	Search  SearchCmd  `cmd:"" help:"Full-text search over slide text and speaker notes"`
	Restore RestoreCmd `cmd:"" help:"Restore a script from one of its backups"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals is bound into every command's Run method.
type Globals struct {
	Out    io.Writer
	Config config.AppConfig
	// Crash receives the script being presented so a panic can autosave it.
	Crash *crash.Target
}

var crashTarget crash.Target

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	defer crash.Recover(&crashTarget)

	ctx := kong.Parse(&CLI,
		kong.Name("gopinpoint"),
		kong.Description("A presentation tool for plain-text slide scripts"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	l.Debug("start", slog.String("command", ctx.Command()))
	err := ctx.Run(&Globals{Out: os.Stdout, Config: cfg, Crash: &crashTarget})
	if err != nil {
		l.Error("command failed", slog.String("command", ctx.Command()), slog.Any("err", err))
	}
	ctx.FatalIfErrorf(err)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := io.WriteString(g.Out, "gopinpoint "+version.String()+"\n")
	return err
}
