package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/xcrypt/cmd/xcrypt-tool/cli"
	"github.com/effective-security/xcrypt/internal/version"
)

type app struct {
	cli.Cli

	Version  ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`
	Features cli.FeaturesCmd `cmd:"" help:"list supported algorithms"`
	Digest   cli.DigestCmd   `cmd:"" help:"print digest of the input"`
	Encrypt  cli.EncryptCmd  `cmd:"" help:"encrypt the input"`
	Decrypt  cli.DecryptCmd  `cmd:"" help:"decrypt hex encoded input"`
	Derive   cli.DeriveCmd   `cmd:"" help:"derive key from a secret"`
	Keylen   cli.KeyLenCmd   `cmd:"" help:"print accepted key sizes of a cipher"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("xcrypt-tool"),
		kong.Description("CLI tool for crypto providers"),
		//kong.UsageOnError(),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG more print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
