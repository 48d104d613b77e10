/*
Package runner validates every collection file of a dataset directory.

The runner is the bridge between the pure validator (pkg/schema) and the
outside world: it reads files through pkg/dataset, resolves schemas from a
catalog, fans work out to a bounded pool of goroutines and assembles a
report.Report in file-name order.

# Key Components

  - Runner: the orchestrator. Safe for concurrent Run calls.
  - Hooks: callbacks fired per file and per document (metrics, progress).
  - Options: optional report store, violation publisher and distributed lock.

# Usage

	r := runner.New(
		runner.WithCatalog(catalog.Builtin()),
		runner.WithConcurrency(4),
		runner.WithStore(memory.NewStore()),
	)

	rep, err := r.Run(ctx, "dataset")
	if err != nil {
		// dataset directory missing: environment failure
	}
	os.Exit(rep.Outcome().ExitCode())
*/
package runner
