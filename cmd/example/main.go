package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	contentrevisions "github.com/goliatone/go-content-revisions"
	"github.com/goliatone/go-content-revisions/internal/commands/fixtures"
	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	urlkit "github.com/goliatone/go-urlkit"
)

var moduleBuilder = contentrevisions.New

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("revisions example: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("revisions-example", flag.ContinueOnError)
	fs.SetOutput(out)
	languages := fs.String("languages", "en=English,fr=French,de=German", "Comma separated language list, code=Name")
	sync := fs.Bool("sync", true, "Synchronise moderation state across translations")
	asJSON := fs.Bool("json", false, "Print the overview as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := contentrevisions.LoadConfigFromEnv(contentrevisions.DefaultConfig())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Languages = parseLanguages(*languages)
	if len(cfg.Languages) > 0 {
		cfg.DefaultLanguage = cfg.Languages[0].Code
	}
	cfg.Sync.ModerationStateTranslations = *sync
	cfg.Routes.Group = "admin"
	cfg.Routes.RouteConfig = &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "admin",
				BaseURL: "https://cms.example.com",
				Paths: map[string]string{
					"canonical":                "/content/:content_id",
					"revision":                 "/content/:content_id/revisions/:revision_id/view",
					"translation_revision_add": "/content/:content_id/revisions/:revision_id/translations/add/:source/:target",
					"revision_revert_confirm":  "/content/:content_id/revisions/:revision_id/revert",
				},
			},
		},
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("initialise module: %w", err)
	}
	defer module.Close()

	handlers, err := module.Commands(fixtures.NewRecordingRegistry())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	changeSub := dispatcher.SubscribeCommand(handlers.ChangeState, runner.WithMaxRetries(0))
	defer changeSub.Unsubscribe()
	addSub := dispatcher.SubscribeCommand(handlers.AddTranslation, runner.WithMaxRetries(0))
	defer addSub.Unsubscribe()

	source := cfg.DefaultLanguage
	item, err := module.Store().CreateItem(ctx, revisions.CreateItemInput{
		ContentType: "article",
		Langcode:    source,
		Label:       "Release notes",
		LogMessage:  "Initial revision",
	})
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	for _, lang := range cfg.Languages[1:] {
		if err := dispatcher.Dispatch(ctx, contentrevisions.AddTranslationCommand{
			ContentID: item.ID,
			Source:    source,
			Target:    lang.Code,
		}); err != nil {
			return fmt.Errorf("add %s translation: %w", lang.Code, err)
		}
	}
	if err := dispatcher.Dispatch(ctx, contentrevisions.ChangeModerationStateCommand{
		ContentID:  item.ID,
		Langcode:   source,
		State:      string(domain.ModerationStatePublished),
		LogMessage: "Publish",
	}); err != nil && !contentrevisions.IsPartialSync(err) {
		return fmt.Errorf("publish %s: %w", source, err)
	}

	viewCtx := permissions.WithPermissions(ctx,
		permissions.TranslateAnyEntity,
		permissions.CreateContentTranslations,
		permissions.RevertAllRevisions,
	)
	result, err := module.BuildOverview(viewCtx, item.ID)
	if err != nil && result == nil {
		return fmt.Errorf("build overview: %w", err)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printMatrix(out, result)
}

func printMatrix(out io.Writer, result *contentrevisions.Overview) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range result.Rows {
		fmt.Fprintf(w, "revision %d\tdefault=%t\tcurrent=%t\n", row.RevisionID, row.Default, row.Current)
		for _, cell := range row.Cells {
			ops := make([]string, 0, len(cell.Operations))
			for _, op := range cell.Operations {
				ops = append(ops, string(op.Kind))
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", cell.LanguageName, cell.Status, strings.Join(ops, ","))
		}
	}
	return w.Flush()
}

func parseLanguages(value string) []contentrevisions.LanguageConfig {
	var out []contentrevisions.LanguageConfig
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, name, _ := strings.Cut(part, "=")
		out = append(out, contentrevisions.LanguageConfig{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)})
	}
	return out
}
