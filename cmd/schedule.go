package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/dependency"
	"github.com/ritmolabs/ritmo/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage accompaniment jobs (check-in prompts, weekly reports)",
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleEnableCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}

// ---- list ------------------------------------------------------------------

var scheduleListAll bool

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled jobs",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc := scheduler.NewService(config.SchedulePath())
		jobs := svc.Jobs(scheduleListAll)
		if len(jobs) == 0 {
			fmt.Println("No scheduled jobs.")
			return nil
		}
		fmt.Printf("%-10s %-20s %-16s %-25s %-10s %-20s\n", "ID", "Name", "Kind", "Schedule", "Status", "Next Run")
		fmt.Println(repeatStr("-", 104))
		for _, j := range jobs {
			status := "enabled"
			if !j.Enabled {
				status = "disabled"
			}
			nextRun := ""
			if j.State.NextRunAtMs != nil {
				nextRun = time.UnixMilli(*j.State.NextRunAtMs).Format("2006-01-02 15:04")
			}
			fmt.Printf("%-10s %-20s %-16s %-25s %-10s %-20s\n",
				j.ID, truncStr(j.Name, 19), j.Payload.Kind, truncStr(formatSchedule(j.Schedule), 24), status, nextRun)
		}
		return nil
	},
}

func init() {
	scheduleListCmd.Flags().BoolVarP(&scheduleListAll, "all", "a", false, "Include disabled jobs")
}

// ---- add -------------------------------------------------------------------

var (
	scheduleAddName    string
	scheduleAddKind    string
	scheduleAddUser    string
	scheduleAddMsg     string
	scheduleAddEvery   int
	scheduleAddCron    string
	scheduleAddTZ      string
	scheduleAddAt      string
	scheduleAddChannel string
	scheduleAddChat    string
)

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled job",
	RunE: func(_ *cobra.Command, _ []string) error {
		if scheduleAddTZ != "" && scheduleAddCron == "" {
			return fmt.Errorf("--tz can only be used with --cron")
		}

		var sched scheduler.Schedule
		switch {
		case scheduleAddEvery > 0:
			everyMs := int64(scheduleAddEvery) * 1000
			sched = scheduler.Schedule{Kind: "every", EveryMs: &everyMs}
		case scheduleAddCron != "":
			sched = scheduler.Schedule{Kind: "cron", Expr: &scheduleAddCron}
			if scheduleAddTZ != "" {
				sched.TZ = &scheduleAddTZ
			}
		case scheduleAddAt != "":
			dt, err := time.ParseInLocation("2006-01-02T15:04:05", scheduleAddAt, time.Local)
			if err != nil {
				dt, err = time.Parse(time.RFC3339, scheduleAddAt)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", scheduleAddAt, err)
				}
			}
			atMs := dt.UnixMilli()
			sched = scheduler.Schedule{Kind: "at", AtMs: &atMs}
		default:
			return fmt.Errorf("must specify --every, --cron, or --at")
		}

		svc := scheduler.NewService(config.SchedulePath())
		job, err := svc.AddJob(scheduleAddName, sched, scheduler.Payload{
			Kind:    scheduleAddKind,
			UserID:  scheduleAddUser,
			Channel: scheduleAddChannel,
			ChatID:  scheduleAddChat,
			Message: scheduleAddMsg,
		}, sched.Kind == "at")
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added job '%s' (%s)\n", job.Name, job.ID)
		return nil
	},
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleAddName, "name", "n", "", "Job name (required)")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddKind, "kind", "k", scheduler.KindCheckinPrompt,
		"Job kind: checkin_prompt, weekly_report, memory_sweep")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddUser, "user", "u", "", "Target user ID")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddMsg, "message", "m", "", "Prompt text override")
	scheduleAddCmd.Flags().IntVarP(&scheduleAddEvery, "every", "e", 0, "Run every N seconds")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddCron, "cron", "c", "", "Cron expression (e.g. '0 10 * * *')")
	scheduleAddCmd.Flags().StringVar(&scheduleAddTZ, "tz", "", "IANA timezone for --cron")
	scheduleAddCmd.Flags().StringVar(&scheduleAddAt, "at", "", "Run once at ISO datetime")
	scheduleAddCmd.Flags().StringVar(&scheduleAddChannel, "channel", "", "Delivery channel override")
	scheduleAddCmd.Flags().StringVar(&scheduleAddChat, "chat", "", "Delivery chat ID override")

	_ = scheduleAddCmd.MarkFlagRequired("name")
}

// ---- remove / enable -------------------------------------------------------

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Remove a scheduled job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := scheduler.NewService(config.SchedulePath())
		if svc.RemoveJob(args[0]) {
			fmt.Printf("✓ Removed job %s\n", args[0])
		} else {
			fmt.Printf("Job %s not found\n", args[0])
		}
		return nil
	},
}

var scheduleEnableDisable bool

var scheduleEnableCmd = &cobra.Command{
	Use:   "enable <job-id>",
	Short: "Enable (or disable) a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := scheduler.NewService(config.SchedulePath())
		job, ok := svc.EnableJob(args[0], !scheduleEnableDisable)
		if !ok {
			fmt.Printf("Job %s not found\n", args[0])
			return nil
		}
		action := "enabled"
		if scheduleEnableDisable {
			action = "disabled"
		}
		fmt.Printf("✓ Job '%s' %s\n", job.Name, action)
		return nil
	},
}

func init() {
	scheduleEnableCmd.Flags().BoolVar(&scheduleEnableDisable, "disable", false, "Disable instead of enable")
}

// ---- run -------------------------------------------------------------------

var scheduleRunForce bool

var scheduleRunCmd = &cobra.Command{
	Use:   "run <job-id>",
	Short: "Manually run a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		c, err := dependency.New(cfg)
		if err != nil {
			return fmt.Errorf("wire services: %w", err)
		}
		defer c.Close()

		c.Scheduler().SetOnJob(func(ctx context.Context, job scheduler.Job) error {
			return dispatchJob(ctx, c, cfg, job)
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if c.Scheduler().RunJob(ctx, args[0], scheduleRunForce) {
			fmt.Println("✓ Job executed")
		} else {
			fmt.Printf("Failed to run job %s (not found or disabled; use --force)\n", args[0])
		}
		return nil
	},
}

func init() {
	scheduleRunCmd.Flags().BoolVarP(&scheduleRunForce, "force", "f", false, "Run even if disabled")
}

// ---- helpers ---------------------------------------------------------------

func formatSchedule(s scheduler.Schedule) string {
	switch s.Kind {
	case "every":
		if s.EveryMs != nil {
			return fmt.Sprintf("every %ds", *s.EveryMs/1000)
		}
	case "cron":
		if s.Expr != nil {
			if s.TZ != nil {
				return *s.Expr + " (" + *s.TZ + ")"
			}
			return *s.Expr
		}
	case "at":
		return "one-time"
	}
	return s.Kind
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func repeatStr(s string, n int) string {
	var b string
	for i := 0; i < n; i++ {
		b += s
	}
	return b
}
