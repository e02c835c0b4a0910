/*
Package cli holds the terminal-facing helpers shared by the polaris
subcommands: result formatting, progress rendering for the benchmark
command, signal plumbing for graceful shutdown, and the error types the
commands return to cobra.

Formatting a command result:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, summary); err != nil {
		return err
	}

Rendering progress for a long-running command:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(total)
	for done := int64(0); done < total; done++ {
		// work
		progress.Update(done + 1)
	}
	progress.Finish()

Shutting down on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled on the first signal
*/
package cli
