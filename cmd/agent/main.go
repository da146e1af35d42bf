// Command agent is a terminal client for the CivicSync backend. It fetches
// the issue list, follows the realtime stream, and demonstrates the offline
// write queue: reports made while the server is unreachable are queued and
// replayed on the next watch cycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/civicsync/civicsync/internal/agent"
	"github.com/civicsync/civicsync/internal/models"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "backend base URL")
	email := flag.String("email", "", "login email (optional)")
	password := flag.String("password", "", "login password")
	report := flag.String("report", "", "submit a report as title|description|category|location, then exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := agent.NewHTTPClient(*serverURL)
	if *email != "" {
		if err := api.Login(ctx, *email, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	a := agent.NewSyncAgent(api)
	defer a.Close()

	if *report != "" {
		submit(ctx, a, *report)
		return
	}

	if err := a.Refresh(ctx); err != nil {
		log.Printf("initial fetch failed: %v", err)
	}
	printIssues(a.Issues())

	wsURL := strings.Replace(*serverURL, "http", "ws", 1) + "/ws"
	for ctx.Err() == nil {
		watch(ctx, a, wsURL)
		if ctx.Err() == nil {
			time.Sleep(2 * time.Second)
		}
	}
}

// watch follows the realtime stream until it drops, then refetches and
// replays any queued offline reports before the caller reconnects.
func watch(ctx context.Context, a *agent.SyncAgent, wsURL string) {
	stream, err := agent.DialStream(ctx, wsURL)
	if err != nil {
		log.Printf("stream unavailable: %v", err)
		return
	}
	defer stream.Close()

	if n, err := a.Replay(ctx); err != nil {
		log.Printf("replayed %d queued reports, %d still pending: %v", n, a.PendingCount(), err)
	} else if n > 0 {
		log.Printf("replayed %d queued reports", n)
	}
	if err := a.Refresh(ctx); err != nil {
		log.Printf("refetch failed: %v", err)
	}

	for ev := range stream.Events(ctx) {
		a.Apply(ev)
		fmt.Printf("%s  #%d %s [%s]\n", ev.Kind, ev.Issue.ID, ev.Issue.Title, ev.Issue.Status)
	}
}

func submit(ctx context.Context, a *agent.SyncAgent, report string) {
	parts := strings.SplitN(report, "|", 4)
	if len(parts) != 4 {
		log.Fatal("report must be title|description|category|location")
	}
	draft := agent.Draft{
		Title:       parts[0],
		Description: parts[1],
		Category:    parts[2],
		Location:    parts[3],
	}
	issue, pending, err := a.Create(ctx, draft)
	if err != nil {
		log.Fatalf("report rejected: %v", err)
	}
	if pending != nil {
		fmt.Printf("server unreachable, report queued locally as %s\n", pending.TempID)
		os.Exit(0)
	}
	fmt.Printf("created issue #%d %q (%s)\n", issue.ID, issue.Title, issue.Status)
}

func printIssues(issues []models.Issue) {
	for _, issue := range issues {
		fmt.Printf("#%-4d %-11s %-14s %s\n", issue.ID, issue.Status, issue.Category, issue.Title)
	}
}
