package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentpatterns/internal/chain"
	"github.com/ShayCichocki/agentpatterns/internal/dispatch"
	"github.com/ShayCichocki/agentpatterns/internal/refine"
	"github.com/ShayCichocki/agentpatterns/internal/router"
	"github.com/ShayCichocki/agentpatterns/internal/vote"
)

var (
	seqInput          string
	seqTargetLanguage string

	routerInput string

	parInput          string
	parTargetLanguage string

	orchProject string

	judgeTopic         string
	judgeMaxIterations int
)

var sequentialCmd = &cobra.Command{
	Use:   "sequential",
	Short: "Generate, validate and translate marketing copy",
	Long: `Run the sequential marketing chain for a product description.

The chain generates a headline, body and call to action, validates them
(headline at most 60 characters, body at least 100 characters, call to
action containing an action word) and translates each part when valid.`,
	Example: `  agentpatterns sequential --input "A kettle that boils in 30 seconds" --target-language fr`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return runSequential(cmd.Context(), a, cmd.OutOrStdout(), outputFormat, seqInput, seqTargetLanguage)
		})
	},
}

var routerCmd = &cobra.Command{
	Use:     "router",
	Short:   "Route a message by detected language",
	Example: `  agentpatterns router --input "Hola, ¿cómo estás?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return runRouter(cmd.Context(), a, cmd.OutOrStdout(), outputFormat, routerInput)
		})
	},
}

var parallelCmd = &cobra.Command{
	Use:   "parallel",
	Short: "Translate several times in parallel and vote",
	Long: `Translate a message patterns.vote_attempts times concurrently and keep
the most common translation. Ties go to the earliest attempt.`,
	Example: `  agentpatterns parallel --input "Buy now" --target-language es`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return runParallel(cmd.Context(), a, cmd.OutOrStdout(), outputFormat, parInput, parTargetLanguage)
		})
	},
}

var orchestratorCmd = &cobra.Command{
	Use:   "orchestrator",
	Short: "Break a project into tasks and dispatch them to workers",
	Long: `Split a project description into one task per non-empty line, classify
each task as frontend, backend or analysis, and run it on the matching worker.`,
	Example: `  agentpatterns orchestrator --project $'- Build login API\n- Design UI for login'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return runOrchestrator(cmd.Context(), a, cmd.OutOrStdout(), outputFormat, orchProject)
		})
	},
}

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Refine a story outline until the evaluator approves it",
	Long: `Generate a story outline, evaluate it and feed the evaluator's feedback
into the next attempt, up to --max-iterations times. Running out of
iterations is reported, not treated as an error.`,
	Example: `  agentpatterns judge --topic "a lighthouse keeper" --max-iterations 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return runJudge(cmd.Context(), a, cmd.OutOrStdout(), outputFormat, judgeTopic, judgeMaxIterations)
		})
	},
}

func init() {
	sequentialCmd.Flags().StringVar(&seqInput, "input", "", "Product description to generate copy from")
	sequentialCmd.Flags().StringVar(&seqTargetLanguage, "target-language", "", "Two letter code of the translation language (default patterns.target_language)")
	_ = sequentialCmd.MarkFlagRequired("input")

	routerCmd.Flags().StringVar(&routerInput, "input", "", "Text to route")
	_ = routerCmd.MarkFlagRequired("input")

	parallelCmd.Flags().StringVar(&parInput, "input", "", "Text to translate")
	parallelCmd.Flags().StringVar(&parTargetLanguage, "target-language", "", "Two letter code of the translation language (default patterns.target_language)")
	_ = parallelCmd.MarkFlagRequired("input")

	orchestratorCmd.Flags().StringVar(&orchProject, "project", "", "Project description, one task per line")
	_ = orchestratorCmd.MarkFlagRequired("project")

	judgeCmd.Flags().StringVar(&judgeTopic, "topic", "", "Topic for the story outline")
	judgeCmd.Flags().IntVar(&judgeMaxIterations, "max-iterations", 0, "Maximum refinement iterations (default patterns.max_iterations)")
	_ = judgeCmd.MarkFlagRequired("topic")
}

// withApp builds the app from flags and config, runs fn and releases the app.
func withApp(fn func(a *app) error) (err error) {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func runSequential(ctx context.Context, a *app, w io.Writer, format, input, language string) error {
	if language == "" {
		language = a.cfg.Patterns.TargetLanguage
	}
	c, err := chain.New(a.gen, a.cfg.Patterns.MemorySize,
		chain.WithStore(a.store),
		chain.WithLogger(a.logger.Logger),
	)
	if err != nil {
		return err
	}
	res, err := c.Run(ctx, input, language)
	if err != nil {
		return err
	}

	return render(w, format, res, func() string {
		rows := [][]string{
			{"Original Headline", res.Original.Headline},
			{"Original Body", res.Original.Body},
			{"Call to Action", res.Original.CallToAction},
			{"Validation", statusMark(res.Validation.Valid) + " " + res.Validation.Feedback},
		}
		if res.Translated != nil {
			rows = append(rows,
				[]string{"Translated Headline", res.Translated.Headline},
				[]string{"Translated Body", res.Translated.Body},
				[]string{"Translated CTA", res.Translated.CallToAction},
			)
		}
		rows = append(rows,
			[]string{"Entities", orNone(res.Entities)},
			[]string{"Run ID", res.RunID},
			[]string{"Trace File", orNone(res.TraceLocation)},
		)
		return fieldTable("Sequential Chain Result", rows)
	})
}

func runRouter(ctx context.Context, a *app, w io.Writer, format, input string) error {
	r := router.New(a.gen,
		router.WithStore(a.store),
		router.WithLogger(a.logger.Logger),
	)
	route, err := r.Handle(ctx, input)
	if err != nil {
		return err
	}

	return render(w, format, route, func() string {
		return fieldTable("Router Result", [][]string{
			{"Language", route.Language},
			{"Response", route.Response},
			{"Run ID", route.RunID},
			{"Trace File", orNone(route.TraceLocation)},
		})
	})
}

func runParallel(ctx context.Context, a *app, w io.Writer, format, input, language string) error {
	if language == "" {
		language = a.cfg.Patterns.TargetLanguage
	}
	voter, err := vote.NewVoter(a.gen, a.cfg.Patterns.VoteAttempts, a.logger.Logger)
	if err != nil {
		return err
	}
	res, err := vote.NewTranslator(voter, a.store).Translate(ctx, input, language)
	if err != nil {
		return err
	}

	return render(w, format, res, func() string {
		rows := make([][]string, 0, len(res.Translations)+2)
		for i, t := range res.Translations {
			rows = append(rows, []string{strconv.Itoa(i + 1), t})
		}
		rows = append(rows,
			[]string{"Best", res.Best},
			[]string{"Trace File", orNone(res.TraceLocation)},
		)
		return gridTable("Parallel Translation Result", []string{"Attempt", "Translation"}, rows)
	})
}

func runOrchestrator(ctx context.Context, a *app, w io.Writer, format, project string) error {
	o := dispatch.NewOrchestrator(a.logger.Logger, dispatch.WithStore(a.store))
	res, err := o.Run(ctx, project)
	if err != nil {
		return err
	}

	if format != formatTable {
		return render(w, format, res, nil)
	}

	kinds := make(map[string]string, len(res.Tasks))
	for _, t := range res.Tasks {
		kinds[t.ID] = string(t.Kind)
	}
	rows := make([][]string, 0, len(res.Outcomes))
	for _, out := range res.Outcomes {
		rows = append(rows, []string{out.TaskID, kinds[out.TaskID], statusMark(out.Succeeded), out.Detail()})
	}
	if err := render(w, format, res, func() string {
		return gridTable("Orchestrator Result", []string{"Task", "Kind", "Status", "Output"}, rows)
	}); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSummary:\n%s\n", res.Narrative)
	if res.AllSucceeded {
		printStatus(w, "✓", "All tasks succeeded", color.FgGreen)
	} else {
		printStatus(w, "✗", fmt.Sprintf("%d of %d tasks failed", len(res.Failed()), len(res.Outcomes)), color.FgRed)
	}
	return nil
}

func runJudge(ctx context.Context, a *app, w io.Writer, format, topic string, maxIterations int) error {
	if maxIterations == 0 {
		maxIterations = a.cfg.Patterns.MaxIterations
	}
	l := refine.New(a.gen,
		refine.WithStore(a.store),
		refine.WithLogger(a.logger.Logger),
	)
	res, err := l.Run(ctx, topic, maxIterations)
	if err != nil {
		return err
	}

	return render(w, format, res, func() string {
		return fieldTable("Judge Loop Result", [][]string{
			{"Outline", res.Artifact},
			{"Passed", statusMark(res.Passed) + " " + strconv.FormatBool(res.Passed)},
			{"Iterations", strconv.Itoa(res.Iterations)},
			{"Feedback", orNone(res.Feedback)},
			{"Run ID", res.RunID},
			{"Trace File", orNone(res.TraceLocation)},
		})
	})
}
