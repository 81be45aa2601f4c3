// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdForgotPassword
	CmdConfig
	CmdDemo
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdStatus:
		return "status"
	case CmdForgotPassword:
		return "forgot-password"
	case CmdConfig:
		return "config"
	case CmdDemo:
		return "demo"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed arguments.
type Args struct {
	// Global flags
	Server  string // overrides server.url
	Theme   string // overrides ui.theme
	JSON    bool
	Verbose bool
	Quiet   bool

	// Command-specific
	Subcommand string
	User       string
	ConfigKey  string
	ConfigVal  string
	Addr       string
	Seed       int

	// Unknown is the command word that did not match.
	Unknown string
	// Raw holds the arguments after the command word.
	Raw []string
}

var commandNames = map[string]Command{
	"tui":             CmdTUI,
	"login":           CmdLogin,
	"logout":          CmdLogout,
	"status":          CmdStatus,
	"s":               CmdStatus,
	"forgot-password": CmdForgotPassword,
	"reset-password":  CmdForgotPassword,
	"config":          CmdConfig,
	"demo":            CmdDemo,
	"version":         CmdVersion,
	"help":            CmdHelp,
}

const usageText = `eduportal - terminal client for the EduPortal campus portal

Usage:
  eduportal                          Start the terminal UI (default)
  eduportal login [--user NAME]      Sign in and store the session
  eduportal logout                   Sign out and remove the stored session
  eduportal status, s [--json]       Show who is signed in and the time left
  eduportal forgot-password [--user NAME]
                                     Reset a password with your year of birth
  eduportal config [subcommand]      Configuration
  eduportal demo [--addr ADDR] [--seed N]
                                     Serve a local portal with sample data
  eduportal version                  Print version information

Config Commands:
  eduportal config show              Print the effective configuration
  eduportal config path              Print the configuration file location
  eduportal config init              Write a default config.toml
  eduportal config get <key>         Print one value, e.g. server.url
  eduportal config set <key> <value> Change one value and save
  eduportal config keys              List every key

Global Flags:
  --server URL    Portal server (default from config, http://localhost:5000)
  --theme NAME    light, dark or auto
  --json          Machine-readable output where supported
  -v, --verbose   Debug logging
  -q, --quiet     Minimal output

Environment:
  EDUPORTAL_HOME         Configuration directory (default ~/.eduportal)
  EDUPORTAL_SERVER_URL   Portal server
  EDUPORTAL_THEME        Theme
  EDUPORTAL_LOG_LEVEL    Log level (trace, debug, info, warn, error)
  NO_COLOR               Disable colored output

Examples:
  eduportal demo --seed 12           Start a demo server on :5000
  eduportal login --user ADMIN       Sign in as the administrator
  eduportal                          Open the portal
  eduportal status --json            Session details for scripts

Version: %s
`

// PrintUsage prints the help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("eduportal version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

var globalBools = []string{"json", "verbose", "v", "quiet", "q", "help", "h"}

// ParseArgs parses raw command-line arguments.
func ParseArgs(raw []string) (Command, Args) {
	p := NewArgParser(raw, globalBools...)
	args := Args{
		Server:  p.Flag("server"),
		Theme:   p.Flag("theme"),
		JSON:    p.BoolFlag("json"),
		Verbose: p.BoolFlag("verbose", "v"),
		Quiet:   p.BoolFlag("quiet", "q"),
		User:    p.Flag("user", "u"),
		Addr:    p.FlagOrDefault("addr", ":5000"),
		Seed:    p.FlagIntOrDefault("seed", 8),
	}
	if p.BoolFlag("help", "h") {
		return CmdHelp, args
	}

	word := strings.ToLower(p.Subcommand())
	if word == "" {
		return CmdTUI, args
	}
	cmd, ok := commandNames[word]
	if !ok {
		args.Unknown = word
		return CmdUnknown, args
	}

	args.Raw = p.PositionalFrom(1)
	args.Subcommand = p.Positional(1)
	if cmd == CmdConfig {
		args.ConfigKey = p.Positional(2)
		args.ConfigVal = strings.Join(p.PositionalFrom(3), " ")
	}
	return cmd, args
}
