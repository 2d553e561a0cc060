// Command report prints a monthly summary, or sends it by mail with -send.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
	mailgunnotify "kakeibo/internal/notify/mailgun"
	"kakeibo/internal/services"
)

func main() {
	var (
		year  = flag.Int("year", 0, "year to summarize (default: current)")
		month = flag.Int("month", 0, "month to summarize, 1-12 (default: current)")
		send  = flag.Bool("send", false, "send the current-month report by mail instead of printing")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}
	store := result.Backend

	summarizer := services.NewSummarizer(store)

	if *send {
		if !cfg.ReportingConfigured() {
			logger.Error("Mail settings are incomplete; set MAILGUN_DOMAIN, MAILGUN_API_KEY, MAIL_SENDER and MAIL_RECIPIENT")
			os.Exit(1)
		}
		notifier := mailgunnotify.New(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender)
		reporter := services.NewReporter(summarizer, notifier, store, cfg.MailRecipient, cfg.LedgerURL)
		sent, err := reporter.SendMonthlyReport(ctx)
		if err != nil {
			logger.Error("Failed to send monthly report", log.FieldError, err)
			os.Exit(1)
		}
		if !sent {
			fmt.Println("Report sending is disabled in the ledger settings.")
			return
		}
		fmt.Printf("Monthly report sent to %s.\n", cfg.MailRecipient)
		return
	}

	summary, err := summarizer.Summarize(ctx, *year, *month)
	if err != nil {
		logger.Error("Failed to summarize", log.FieldError, err, log.FieldYear, *year, log.FieldMonth, *month)
		os.Exit(1)
	}
	printSummary(summary)
}

func printSummary(s core.MonthlySummary) {
	fmt.Printf("%d-%02d\n", s.Year, s.Month)
	fmt.Printf("  Income:  %s円\n", s.TotalIncome.Format())
	fmt.Printf("  Expense: %s円\n", s.TotalExpense.Format())
	net := s.NetBalance()
	label := "surplus"
	if net.Cents < 0 {
		label = "deficit"
	}
	fmt.Printf("  Net:     %s円 (%s)\n", net.Format(), label)

	if len(s.Breakdown) == 0 {
		return
	}
	names := make([]string, 0, len(s.Breakdown))
	for name := range s.Breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("  By category:")
	for _, name := range names {
		share := s.Breakdown[name]
		fmt.Printf("    %s: %s円 (%.1f%%)\n", name, share.Amount.Format(), share.Percentage)
	}
}
