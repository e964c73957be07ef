package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/client"
)

func newSubmitCmd() *cobra.Command {
	var (
		serverProperties string
		toolID           string
		params           string
		count            int
		concurrency      int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send jobs to the coordinator and print their results",
		Long: `Sends --count jobs for --tool concurrently. Without --params job i gets the integer i,
so "submit --tool fibonacci --count 48" prints the first 48 Fibonacci numbers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New[config.ClientConfig]()
			if err != nil {
				return err
			}
			if err := readProperties(serverProperties, cfg.ApplyServerProperties); err != nil {
				return err
			}
			if params != "" && !json.Valid([]byte(params)) {
				return fmt.Errorf("--params is not valid JSON")
			}
			if count < 1 || concurrency < 1 {
				return fmt.Errorf("--count and --concurrency must be positive")
			}

			logger, err := setupLogger("submit")
			if err != nil {
				return err
			}
			defer logger.Sync()

			c := client.NewClient(cfg.CoordinatorAddress(), client.WithTimeout(cfg.HopTimeout))
			out := cmd.OutOrStdout()
			var failed atomic.Int32

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i := 0; i < count; i++ {
				raw := params
				if raw == "" {
					raw = strconv.Itoa(i)
				}
				g.Go(func() error {
					job, err := domain.NewJob(toolID, json.RawMessage(raw))
					if err != nil {
						return err
					}

					result, err := c.Submit(ctx, job)
					if err != nil {
						failed.Add(1)
						logger.Error("Job failed", "jobId", job.ID, "toolId", toolID, "params", raw, "error", err)
						fmt.Fprintf(out, "%s(%s) failed: %v\n", toolID, raw, err)
						return nil
					}
					fmt.Fprintf(out, "%s(%s) = %s\n", toolID, raw, result.Display())
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if n := failed.Load(); n > 0 {
				return fmt.Errorf("%d of %d jobs failed", n, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverProperties, "properties", "", "coordinator Server.properties file (HOST, PORT)")
	cmd.Flags().StringVar(&toolID, "tool", "fibonacci", "tool identifier")
	cmd.Flags().StringVar(&params, "params", "", "JSON parameters for every job (default: the job index)")
	cmd.Flags().IntVar(&count, "count", 1, "number of jobs")
	cmd.Flags().IntVar(&concurrency, "concurrency", 48, "jobs in flight at once")
	return cmd
}
