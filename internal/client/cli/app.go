// Package cli implements the interactive operator console for a TraceGuard
// server: auth, document upload and retrieval, reuse checks, and audit
// inspection over the HTTP API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/Vinithareddy09/TraceGuard/internal/client/httpclient"
)

type App struct {
	client *httpclient.Client
	reader *bufio.Reader
}

func NewApp(serverURL string) *App {
	return &App{
		client: httpclient.New(serverURL),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name")
	if err != nil {
		return err
	}
	password, err := getPassword()
	if err != nil {
		return err
	}

	if err := a.client.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Println("Registered.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name")
	if err != nil {
		return err
	}
	password, err := getPassword()
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, username, password); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *App) Upload(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Document name")
	if err != nil {
		return err
	}
	text, err := getMultiline(a.reader, "Document text (finish with an empty line)")
	if err != nil {
		return err
	}

	fp, err := a.client.Upload(ctx, name, text)
	if err != nil {
		return err
	}
	fmt.Printf("Stored. Fingerprint: %s\n", fp)
	return nil
}

func (a *App) Access(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Document name or fingerprint")
	if err != nil {
		return err
	}
	if err := a.client.RecordAccess(ctx, name); err != nil {
		return err
	}
	fmt.Println("Access recorded.")
	return nil
}

func (a *App) Show(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Document name or fingerprint")
	if err != nil {
		return err
	}
	text, err := a.client.Read(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func (a *App) ReuseCheck(ctx context.Context) error {
	text, err := getMultiline(a.reader, "Candidate text (finish with an empty line)")
	if err != nil {
		return err
	}

	matches, err := a.client.ReuseCheck(ctx, text)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%6.1f%%  %s  %s\n", m.Similarity, m.Document, m.Fingerprint)
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	docs, err := a.client.Documents(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Printf("%s  %s  %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"), d.Name, d.Fingerprint)
	}
	return nil
}

func (a *App) Audit(ctx context.Context) error {
	entries, err := a.client.Audit(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		status := "ok"
		if !e.Verified {
			status = "TAMPERED"
		}
		fmt.Printf("#%d  %-12s %-10s %s  [%s]\n", e.Sequence, e.Action, e.UserID, e.Document, status)
	}
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	stats, err := a.client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("documents: %d\naccesses: %d\nreuse checks: %d\naudit entries: %d\n",
		stats.DocumentCount, stats.AccessCount, stats.ReuseEventCount, stats.AuditEntryCount)
	return nil
}

func (a *App) Archive(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Local file to archive")
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	key, err := a.client.Archive(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Printf("Archived under key %s\n", key)
	return nil
}
