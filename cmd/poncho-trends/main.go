// Poncho Trends - генератор отчётов о рыночных трендах.
//
// Режимы:
//
//	poncho-trends                          # TUI форма
//	poncho-trends -topic "AI" -to a@b.co   # headless запуск, события в stdout
//	poncho-trends -serve -addr :8080       # web форма
//	poncho-trends -history                 # журнал запусков и архив S3
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ilkoid/poncho-trends/internal/ui"
	"github.com/ilkoid/poncho-trends/internal/web"
	"github.com/ilkoid/poncho-trends/pkg/agent"
	appcomponents "github.com/ilkoid/poncho-trends/pkg/app"
	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/journal"
	"github.com/ilkoid/poncho-trends/pkg/s3storage"
	"github.com/ilkoid/poncho-trends/pkg/tui"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

type flags struct {
	configPath string
	topic      string
	recipient  string
	serve      bool
	addr       string
	history    bool
	limit      int
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to config.yaml")
	flag.StringVar(&f.topic, "topic", "", "report topic (headless mode when set together with -to)")
	flag.StringVar(&f.recipient, "to", "", "recipient email address")
	flag.BoolVar(&f.serve, "serve", false, "serve the web form instead of the TUI")
	flag.StringVar(&f.addr, "addr", "", "web form listen address (overrides web.addr)")
	flag.BoolVar(&f.history, "history", false, "print recent runs and archived reports")
	flag.IntVar(&f.limit, "limit", 20, "number of runs shown by -history")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// 1. Конфигурация
	cfg, cfgPath, err := appcomponents.InitializeConfig(&appcomponents.DefaultConfigPathFinder{ConfigFlag: f.configPath})
	if err != nil {
		return err
	}

	// 2. Логгер (TUI занимает терминал, поэтому лог в файл)
	if err := utils.InitLogger(".", cfg.App.Debug); err != nil {
		log.Printf("Warning: failed to init logger: %v", err)
	}
	utils.Info("Application started", "config", cfgPath, "default_model", cfg.Models.DefaultChat)

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// Журнал и архив читаются без агента: ключ модели не нужен
	if f.history {
		return printHistory(ctx, os.Stdout, cfg, f.limit)
	}

	// 3. Агент. Без ключа модели дальше не идём.
	client, err := agent.NewFromConfig(cfg)
	if err != nil {
		utils.Error("Agent creation failed", "error", err)
		return fmt.Errorf("agent creation failed: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			utils.Warn("Agent close failed", "error", err)
		}
	}()

	switch {
	case f.serve:
		addr := f.addr
		if addr == "" {
			addr = cfg.Web.Addr
		}
		if addr == "" {
			addr = ":8080"
		}
		fmt.Printf("Serving report form on %s (Ctrl+C to stop)\n", addr)
		return web.Serve(ctx, addr, web.NewServer(client).Routes())
	case f.topic != "" || f.recipient != "":
		return runHeadless(ctx, os.Stdout, client, agent.Request{Topic: f.topic, Recipient: f.recipient})
	default:
		model, _ := cfg.GetChatModel("")
		return ui.Run(ctx, client, ui.Options{
			ModelName: model.ModelName,
			Debug:     cfg.App.Debug,
		})
	}
}

// runHeadless печатает события агента построчно и итоговое сообщение.
func runHeadless(ctx context.Context, out io.Writer, client *agent.Client, req agent.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sub := client.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if line, ok := tui.FormatEvent(event); ok && line.Kind != tui.KindError {
					fmt.Fprintln(out, line.Text)
				}
				if event.Type == events.EventDone || event.Type == events.EventError {
					return
				}
			}
		}
	}()

	result, err := client.Run(ctx, req)
	<-printed
	if err != nil {
		return fmt.Errorf("agent execution: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Agent execution complete!")
	fmt.Fprintln(out, "Final Agent Message:")
	fmt.Fprintln(out, result)
	fmt.Fprintf(out, "Please check the inbox for %s for the attached report PDF.\n", req.Recipient)
	return nil
}

// printHistory выводит журнал запусков и, если настроен S3, архив отчётов.
func printHistory(ctx context.Context, out io.Writer, cfg *config.AppConfig, limit int) error {
	if cfg.Journal.Path == "" {
		fmt.Fprintln(out, "Run journal is disabled (set journal.path in config.yaml).")
	} else {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()

		runs, err := j.List(ctx, limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATUS\tTOPIC\tRECIPIENT\tERROR")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status,
				utils.Truncate(r.Topic, 40), r.Recipient, utils.Truncate(utils.OneLine(r.Error), 60))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if !cfg.S3.Enabled() {
		return nil
	}
	archive, err := s3storage.New(cfg.S3)
	if err != nil {
		return err
	}
	objects, err := archive.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("list archived reports: %w", err)
	}
	fmt.Fprintf(out, "\nArchived reports in s3://%s (%d):\n", cfg.S3.Bucket, len(objects))
	for _, o := range objects {
		fmt.Fprintf(out, "  %s  %8d  %s\n", o.LastModified.Local().Format("2006-01-02 15:04"), o.Size, o.Key)
	}
	return nil
}
