package canvasflow_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/petrijr/canvasflow"
)

// Example_engine demonstrates building a small canvas and running it on an
// engine with a Router that dispatches by node type.
func Example_engine() {
	ctx := context.Background()

	g := canvasflow.NewGraph().
		Node("p", "prompt", map[string]any{"output": "a lighthouse at dusk"}).
		Node("draft", "llm", nil).
		Node("img", "image-gen", nil).
		Node("out", "output", nil).
		Connect("p", "output", "draft", "prompt").
		Connect("draft", "output", "img", "prompt").
		Edge("img", "out").
		MustBuild()

	router := canvasflow.NewRouter().
		Fallback(canvasflow.SleepExecutor(time.Millisecond))

	eng := canvasflow.NewEngine(canvasflow.EngineConfig{Executor: router})

	run, err := eng.ExecuteWorkflow(ctx, g, "canvas-1")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("status=%s progress=%d/%d\n", run.Status, run.Progress.Completed, run.Progress.Total)
	// Output: status=completed progress=3/3
}

// Example_partialRun demonstrates re-running one node and its descendants.
func Example_partialRun() {
	ctx := context.Background()

	g := canvasflow.NewGraph().
		Node("a", "output", nil).
		Node("b", "output", nil).
		Node("c", "output", nil).
		Edge("a", "b").
		Edge("b", "c").
		MustBuild()

	exec := canvasflow.NodeExecutorFunc(func(ctx context.Context, node canvasflow.Node, contextID string) error {
		fmt.Println("run", node.ID)
		return nil
	})
	eng := canvasflow.NewEngine(canvasflow.EngineConfig{Executor: exec})

	if _, err := eng.ExecuteFromNode(ctx, "b", g, "canvas-1"); err != nil {
		log.Fatal(err)
	}
	// Output:
	// run b
	// run c
}

// Example_localRunner demonstrates running stored graphs in the background.
func Example_localRunner() {
	ctx := context.Background()

	done := make(chan canvasflow.RunResult, 1)
	runner := canvasflow.NewLocalRunner(canvasflow.LocalRunnerConfig{
		Engine:        canvasflow.EngineConfig{Executor: canvasflow.SleepExecutor(time.Millisecond)},
		OnRunFinished: func(r canvasflow.RunResult) { done <- r },
	})

	g := canvasflow.NewGraph().
		Node("a", "output", nil).
		Node("b", "output", nil).
		Edge("a", "b").
		MustBuild()
	if err := runner.Store.SaveGraph(canvasflow.GraphRecord{ID: "canvas-1", Graph: g}); err != nil {
		log.Fatal(err)
	}

	if err := runner.StartWorkers(ctx, 1); err != nil {
		log.Fatal(err)
	}
	defer runner.Stop()

	if _, err := runner.StartRunAsync(ctx, canvasflow.RunRequest{GraphID: "canvas-1", ContextID: "c1"}); err != nil {
		log.Fatal(err)
	}

	r := <-done
	fmt.Printf("status=%s err=%v\n", r.Run.Status, r.Err)
	// Output: status=completed err=<nil>
}
