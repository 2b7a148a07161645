package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/driveshare/driveshare/commands"
)

type command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(ctx context.Context, options *commands.Options) error
}

var cli = []command{
	&commands.ShareCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if options.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if args[0] == "help" {
		help(args[1:])
		return
	}

	cmd := find(args[0])
	if cmd == nil {
		fmt.Printf("\nInvalid command '%s'\n\n", args[0])
		usage()
		os.Exit(1)
	}

	if err := cmd.FlagSet().Parse(args[1:]); err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, &options); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func find(name string) command {
	for _, cmd := range cli {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

func help(args []string) {
	if len(args) > 0 {
		if cmd := find(args[0]); cmd != nil {
			cmd.Help()
			return
		}

		fmt.Printf("\nInvalid command '%s'\n\n", args[0])
	}

	usage()
}

func usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] <command> [options]\n", commands.APP)
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println()

	for _, cmd := range cli {
		fmt.Printf("    %-9s %s\n", cmd.Name(), cmd.Description())
	}

	fmt.Println()
	fmt.Printf("  Use '%s help <command>' for command specific options\n", commands.APP)
	fmt.Println()
}
