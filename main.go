// eduportal - terminal client for the EduPortal campus portal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/eduportal-tui/internal/cli"
	"github.com/jeranaias/eduportal-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	os.Exit(run(cmd, args))
}

func run(cmd cli.Command, args cli.Args) int {
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return cli.ExitSuccess
	case cli.CmdVersion:
		if args.JSON {
			_ = cli.NewJSONResponse("version", map[string]string{
				"version": cli.Version, "git_commit": cli.GitCommit, "build_date": cli.BuildDate,
			}).Print()
			return cli.ExitSuccess
		}
		cli.PrintVersion()
		return cli.ExitSuccess
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args.Unknown)
		cli.PrintUsage()
		return cli.ExitUsageError
	case cli.CmdDemo:
		return exit(cmd, args, cli.HandleDemo(args, os.Stdout))
	case cli.CmdConfig:
		dir, err := config.Dir()
		if err == nil {
			err = cli.HandleConfig(dir, args, os.Stdout)
		}
		return exit(cmd, args, err)
	}

	env, err := cli.Setup(args)
	if err != nil {
		return exit(cmd, args, err)
	}
	defer env.Close()

	switch cmd {
	case cli.CmdLogin:
		prompt := cli.NewPrompter()
		defer prompt.Close()
		err = cli.HandleLogin(env, args, prompt, os.Stdout)
	case cli.CmdLogout:
		err = cli.HandleLogout(env, args, os.Stdout)
	case cli.CmdStatus:
		err = cli.HandleStatus(env, args, os.Stdout)
	case cli.CmdForgotPassword:
		prompt := cli.NewPrompter()
		defer prompt.Close()
		err = cli.HandleForgotPassword(env, args, prompt, os.Stdout)
	default:
		err = cli.RunTUI(env)
	}
	return exit(cmd, args, err)
}

func exit(cmd cli.Command, args cli.Args, err error) int {
	if err == nil {
		return cli.ExitSuccess
	}
	if err == cli.ErrAborted {
		fmt.Fprintln(os.Stderr)
		return cli.ExitGeneralError
	}
	cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON && cmd != cli.CmdStatus)
	return cli.GetExitCode(err)
}
