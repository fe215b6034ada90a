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

	"github.com/joho/godotenv"
	"github.com/xlab/treeprint"

	"ConverseAI/app/clients"
	"ConverseAI/app/configs"
	"ConverseAI/app/conversation"
	"ConverseAI/app/models"
	"ConverseAI/app/rag"
	"ConverseAI/app/storage"
	"ConverseAI/app/teams"
	"ConverseAI/app/tools"
	"ConverseAI/app/transcription"
	"ConverseAI/app/utils"
)

const usage = `Usage: converseai <command> [options]

Commands:
  finance <query>      Run the finance analysis team on a query
  medical <query>      Run the medical analysis team on a query
  legal <query>        Run the legal analysis team on a query
  converse             Voice conversation loop (PCM audio on stdin)
  transcribe <file>    Transcribe an audio file
  ingest <folder>      Index every document in a folder into the knowledge base
  memory               List or search stored conversation memories
  save <text>          Save text to the output folder
  clear                Delete a knowledge base collection
  discord              Serve a team over Discord
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	settings := configs.LoadSettings()
	if err := settings.Validate(); err != nil {
		log.Fatalf("🚨 %v", err)
	}

	tools.InitializeBuiltinTools()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case teams.TeamFinance, teams.TeamMedical, teams.TeamLegal:
		err = runQuery(ctx, settings, cmd, args)
	case "converse":
		err = runConverse(ctx, settings, args)
	case "transcribe":
		err = runTranscribe(ctx, settings, args)
	case "ingest":
		err = runIngest(ctx, settings, args)
	case "memory":
		err = runMemory(ctx, args)
	case "save":
		err = runSave(args)
	case "clear":
		err = runClear(ctx, settings, args)
	case "discord":
		err = runDiscord(ctx, settings, args)
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("🚨 %v", err)
	}
}

// deps builds the shared collaborator set every team command needs. The
// returned cleanup closes the vector store and the memory database.
func deps(settings *configs.Settings) (teams.Deps, func(), error) {
	store, err := rag.NewQdrantStore()
	if err != nil {
		return teams.Deps{}, nil, fmt.Errorf("connect to vector store: %w", err)
	}

	db, err := storage.NewSQLiteStorage()
	if err != nil {
		store.Close()
		return teams.Deps{}, nil, fmt.Errorf("open memory storage: %w", err)
	}

	embedder := models.NewOllamaEmbedder(settings.EmbeddingsModel)
	ragClient := rag.NewClient(store, embedder, settings.Collection)
	model := models.NewLLMClient(db, settings.LLMModel)

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("⚠️ Error closing vector store: %v", err)
		}
		if err := db.Close(); err != nil {
			log.Printf("⚠️ Error closing memory storage: %v", err)
		}
	}
	return teams.Deps{
		Model:      model,
		Rag:        ragClient,
		DB:         db,
		Collection: settings.Collection,
	}, cleanup, nil
}

// buildTeam resolves a team either from the built-in presets or, when a
// config file is given, from user-defined YAML.
func buildTeam(kind, user, configPath string, d teams.Deps) (*teams.Team, error) {
	if configPath != "" {
		cfg, err := configs.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return cfg.BuildTeamByName(kind, user, d)
	}
	return teams.BuildTeam(kind, user, d)
}

func runQuery(ctx context.Context, settings *configs.Settings, kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	user := fs.String("user", "default", "user the analysis is attributed to")
	configPath := fs.String("config", "", "YAML file with user-defined teams")
	_ = fs.Parse(args)

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("usage: converseai %s <query>", kind)
	}

	d, cleanup, err := deps(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	team, err := buildTeam(kind, *user, *configPath, d)
	if err != nil {
		return err
	}

	answer, err := team.Run(ctx, query)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func runConverse(ctx context.Context, settings *configs.Settings, args []string) error {
	fs := flag.NewFlagSet("converse", flag.ExitOnError)
	kind := fs.String("team", teams.TeamFinance, "team to converse with: finance, medical or legal")
	user := fs.String("user", "default", "user the conversation is attributed to")
	configPath := fs.String("config", "", "YAML file with user-defined teams")
	_ = fs.Parse(args)

	if *configPath == "" && !teams.ValidTeamType(*kind) {
		return fmt.Errorf("unknown team type: %s", *kind)
	}
	if missing := configs.CheckEnvironment("ASSEMBLY_AI_API_KEY"); len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	d, cleanup, err := deps(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	team, err := buildTeam(*kind, *user, *configPath, d)
	if err != nil {
		return err
	}

	handler, err := conversation.NewHandler(team, d.DB, *user, settings.PauseDuration)
	if err != nil {
		return err
	}
	return handler.Start(ctx, os.Stdin, settings.SampleRate)
}

func runTranscribe(ctx context.Context, settings *configs.Settings, args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	ingest := fs.Bool("ingest", false, "index the transcript into the knowledge base")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: converseai transcribe [-ingest] <audio file>")
	}
	if missing := configs.CheckEnvironment("ASSEMBLY_AI_API_KEY"); len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	transcriber, err := transcription.NewBatchTranscriber(settings.SpeechAPIKey)
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	transcript, err := transcriber.TranscribeFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Println(transcript)

	if *ingest {
		d, cleanup, err := deps(settings)
		if err != nil {
			return err
		}
		defer cleanup()
		if _, err := d.Rag.UpsertText(ctx, transcript, settings.Collection, path); err != nil {
			return err
		}
	}
	return nil
}

func runIngest(ctx context.Context, settings *configs.Settings, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	collection := fs.String("collection", settings.Collection, "target collection")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: converseai ingest [-collection name] <folder>")
	}
	folder := fs.Arg(0)

	tree, err := utils.BuildTree(folder, treeprint.New(), nil)
	if err != nil {
		return err
	}
	fmt.Println(tree)

	d, cleanup, err := deps(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := d.Rag.IngestFolder(ctx, folder, *collection)
	if err != nil {
		return err
	}
	log.Printf("✅ Indexed %d documents from %s into collection '%s'", count, folder, *collection)
	return nil
}

func runMemory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	user := fs.String("user", "default", "user whose memories to read")
	query := fs.String("query", "", "substring to search for; empty lists the most recent")
	limit := fs.Int("limit", 10, "maximum records to return")
	_ = fs.Parse(args)

	db, err := storage.NewSQLiteStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	var records []storage.Record
	if *query == "" {
		records, err = db.GetMemoriesByUser(ctx, *user, *limit)
	} else {
		records, err = db.SearchMemories(ctx, *user, *query, *limit)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No memories found.")
		return nil
	}
	fmt.Println(storage.RecordListToString(records, *limit))
	return nil
}

func runSave(args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	name := fs.String("name", "", "output file name; defaults to a timestamp")
	dir := fs.String("dir", "output", "output directory")
	_ = fs.Parse(args)

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return fmt.Errorf("usage: converseai save [-name file] <text>")
	}

	path, err := utils.SaveTextToFile(text, *name, *dir)
	if err != nil {
		return err
	}
	log.Printf("✅ Saved to %s", path)
	return nil
}

func runClear(ctx context.Context, settings *configs.Settings, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	collection := fs.String("collection", settings.Collection, "collection to delete")
	_ = fs.Parse(args)

	store, err := rag.NewQdrantStore()
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := models.NewOllamaEmbedder(settings.EmbeddingsModel)
	return rag.NewClient(store, embedder, settings.Collection).ClearCollection(ctx, *collection)
}

func runDiscord(ctx context.Context, settings *configs.Settings, args []string) error {
	fs := flag.NewFlagSet("discord", flag.ExitOnError)
	kind := fs.String("team", teams.TeamFinance, "team to serve: finance, medical or legal")
	user := fs.String("user", "discord", "user the analyses are attributed to")
	configPath := fs.String("config", "", "YAML file with user-defined teams")
	_ = fs.Parse(args)

	if missing := configs.CheckEnvironment("DISCORD_TOKEN"); len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	d, cleanup, err := deps(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	team, err := buildTeam(*kind, *user, *configPath, d)
	if err != nil {
		return err
	}

	registry := clients.NewRegistry()
	defer registry.CloseAll()

	discord := clients.NewDiscordClient()
	if discord == nil {
		return fmt.Errorf("DISCORD_TOKEN not found in environment")
	}
	if err := registry.Register(discord, team); err != nil {
		return err
	}

	log.Printf("🤖 Serving %s team on Discord. Ctrl+C to stop.", team.Name)
	<-ctx.Done()
	return nil
}
