package main

import (
	"fmt"
	"os"

	"github.com/ivxv/vmnv"
	"github.com/ivxv/vmnv/bytetree"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	// Version of the binary
	Version = "1.0.0"

	optionProtInfo      = "protinfo"
	optionProtInfoShort = "p"

	optionProofDir      = "proofdir"
	optionProofDirShort = "d"

	optionThreads      = "threads"
	optionThreadsShort = "t"

	optionReport      = "report"
	optionReportShort = "r"

	optionVerbose      = "verbose"
	optionVerboseShort = "v"
)

// Exit codes of the verify command.
const (
	exitVerified = 0
	exitRejected = 1
	exitError    = 2
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "vmnv"
	cliApp.Usage = "Verify proofs of shuffle of a Verificatum mix-net"
	cliApp.Version = Version

	cliApp.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  optionVerbose + ", " + optionVerboseShort,
			Usage: "Log the verification steps and their progress",
		},
	}

	verifyFlags := []cli.Flag{
		cli.StringFlag{
			Name:  optionProtInfo + ", " + optionProtInfoShort,
			Usage: "Protocol information file of the mix-net session",
		},
		cli.StringFlag{
			Name:  optionProofDir + ", " + optionProofDirShort,
			Usage: "Directory holding the ciphertexts, the public key and the proofs directory",
		},
		cli.IntFlag{
			Name:  optionThreads + ", " + optionThreadsShort,
			Value: 0,
			Usage: "Number of verification workers, 0 for one per CPU",
		},
		cli.StringFlag{
			Name:  optionReport + ", " + optionReportShort,
			Usage: "Write a CBOR encoded verification report to this file",
		},
	}

	cliApp.Commands = []cli.Command{
		{
			Name:    "verify",
			Aliases: []string{"v"},
			Usage:   "Verify the proof of shuffle in a proof directory",
			Action:  runVerify,
			Flags:   verifyFlags,
		},
		{
			Name:      "dump",
			Usage:     "Print the structure of byte tree files",
			ArgsUsage: "FILE...",
			Action:    runDump,
		},
		{
			Name:      "report",
			Usage:     "Print a verification report",
			ArgsUsage: "FILE",
			Action:    runReport,
		},
	}

	cliApp.Before = func(c *cli.Context) error {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if c.GlobalBool(optionVerbose) {
			logrus.SetLevel(logrus.DebugLevel)
			vmnv.Follower = &vmnv.LogFollower{Logger: vmnv.Logger}
		} else {
			logrus.SetLevel(logrus.InfoLevel)
		}
		return nil
	}

	if err := cliApp.Run(os.Args); err != nil {
		logrus.Error(err)
		os.Exit(exitError)
	}
}

func runVerify(c *cli.Context) error {
	protinfo, proofDir := c.String(optionProtInfo), c.String(optionProofDir)
	if protinfo == "" || proofDir == "" {
		return cli.NewExitError("both --protinfo and --proofdir are required", exitError)
	}

	proof, err := vmnv.LoadShuffleProof(protinfo, proofDir)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("could not load proof: %v", err), exitError)
	}
	report, err := vmnv.NewThreadedVerifier(proof, c.Int(optionThreads)).Audit()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("could not verify proof: %v", err), exitError)
	}

	if path := c.String(optionReport); path != "" {
		if err = report.WriteFile(path); err != nil {
			return cli.NewExitError(err.Error(), exitError)
		}
	}
	fmt.Println(report)
	if !report.Verified {
		return cli.NewExitError("", exitRejected)
	}
	return nil
}

func runDump(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("no files given", exitError)
	}
	for _, path := range c.Args() {
		t, err := bytetree.ReadFile(path)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("%s: %v", path, err), exitError)
		}
		fmt.Printf("%s:\n%s\n", path, t)
	}
	return nil
}

func runReport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected one report file", exitError)
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), exitError)
	}
	report, err := vmnv.DecodeReport(data)
	if err != nil {
		return cli.NewExitError(err.Error(), exitError)
	}
	fmt.Println(report)
	fmt.Printf("group: %s\nthreads: %d\nrho: %x\nseed: %x\nchallenge: %x\nduration: %s\n",
		report.Group, report.Threads, report.Rho, report.Seed, report.Challenge, report.Finished.Sub(report.Started))
	return nil
}
